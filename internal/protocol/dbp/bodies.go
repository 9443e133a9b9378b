package dbp

import (
	"bytes"
	"fmt"
)

// Per-operation body layouts. Field order in each struct is wire order.
// Fixed-width primitive writes into a bytes.Buffer cannot fail, so their
// errors are discarded; only the variable-length string and the password
// field can reject input.

// ============================================================================
// OPEN
// ============================================================================

// OpenRequest is the body of an OPEN request.
type OpenRequest struct {
	Name     string
	Password string
	Currency Currency
	Initial  float64
}

// Encode serializes the request body in wire order.
func (r *OpenRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Name); err != nil {
		return nil, fmt.Errorf("encode OPEN name: %w", err)
	}
	if err := WritePassword16(&buf, r.Password); err != nil {
		return nil, fmt.Errorf("encode OPEN password: %w", err)
	}
	_ = WriteUint16(&buf, uint16(r.Currency))
	_ = WriteFloat64(&buf, r.Initial)
	return buf.Bytes(), nil
}

// DecodeOpenRequest parses an OPEN request body.
func DecodeOpenRequest(body []byte) (*OpenRequest, error) {
	r := bytes.NewReader(body)
	req := &OpenRequest{}
	var err error
	if req.Name, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode OPEN name: %w", err)
	}
	if req.Password, err = ReadPassword16(r); err != nil {
		return nil, fmt.Errorf("decode OPEN password: %w", err)
	}
	cur, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode OPEN currency: %w", err)
	}
	req.Currency = Currency(cur)
	if req.Initial, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode OPEN initial balance: %w", err)
	}
	return req, expectEOF(r)
}

// OpenReply is the body of a successful OPEN reply.
type OpenReply struct {
	AccountNo int32
	Balance   float64
}

// Encode serializes the reply body.
func (r *OpenReply) Encode() []byte {
	var buf bytes.Buffer
	_ = WriteInt32(&buf, r.AccountNo)
	_ = WriteFloat64(&buf, r.Balance)
	return buf.Bytes()
}

// DecodeOpenReply parses a successful OPEN reply body.
func DecodeOpenReply(body []byte) (*OpenReply, error) {
	r := bytes.NewReader(body)
	rep := &OpenReply{}
	var err error
	if rep.AccountNo, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode OPEN reply account: %w", err)
	}
	if rep.Balance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode OPEN reply balance: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// CLOSE
// ============================================================================

// CloseRequest is the body of a CLOSE request.
type CloseRequest struct {
	Name      string
	AccountNo int32
	Password  string
}

// Encode serializes the request body in wire order.
func (r *CloseRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Name); err != nil {
		return nil, fmt.Errorf("encode CLOSE name: %w", err)
	}
	_ = WriteInt32(&buf, r.AccountNo)
	if err := WritePassword16(&buf, r.Password); err != nil {
		return nil, fmt.Errorf("encode CLOSE password: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCloseRequest parses a CLOSE request body.
func DecodeCloseRequest(body []byte) (*CloseRequest, error) {
	r := bytes.NewReader(body)
	req := &CloseRequest{}
	var err error
	if req.Name, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode CLOSE name: %w", err)
	}
	if req.AccountNo, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode CLOSE account: %w", err)
	}
	if req.Password, err = ReadPassword16(r); err != nil {
		return nil, fmt.Errorf("decode CLOSE password: %w", err)
	}
	return req, expectEOF(r)
}

// CloseReply is the body of a successful CLOSE reply.
type CloseReply struct {
	Info string
}

// Encode serializes the reply body.
func (r *CloseReply) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Info); err != nil {
		return nil, fmt.Errorf("encode CLOSE reply info: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCloseReply parses a successful CLOSE reply body.
func DecodeCloseReply(body []byte) (*CloseReply, error) {
	r := bytes.NewReader(body)
	rep := &CloseReply{}
	var err error
	if rep.Info, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode CLOSE reply info: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// DEPOSIT / WITHDRAW
// ============================================================================

// AmountRequest is the body of DEPOSIT and WITHDRAW requests, which share
// one layout; the opcode in the header distinguishes them.
type AmountRequest struct {
	Name      string
	AccountNo int32
	Password  string
	Currency  Currency
	Amount    float64
}

// Encode serializes the request body in wire order.
func (r *AmountRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Name); err != nil {
		return nil, fmt.Errorf("encode amount-op name: %w", err)
	}
	_ = WriteInt32(&buf, r.AccountNo)
	if err := WritePassword16(&buf, r.Password); err != nil {
		return nil, fmt.Errorf("encode amount-op password: %w", err)
	}
	_ = WriteUint16(&buf, uint16(r.Currency))
	_ = WriteFloat64(&buf, r.Amount)
	return buf.Bytes(), nil
}

// DecodeAmountRequest parses a DEPOSIT or WITHDRAW request body.
func DecodeAmountRequest(body []byte) (*AmountRequest, error) {
	r := bytes.NewReader(body)
	req := &AmountRequest{}
	var err error
	if req.Name, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode amount-op name: %w", err)
	}
	if req.AccountNo, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode amount-op account: %w", err)
	}
	if req.Password, err = ReadPassword16(r); err != nil {
		return nil, fmt.Errorf("decode amount-op password: %w", err)
	}
	cur, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode amount-op currency: %w", err)
	}
	req.Currency = Currency(cur)
	if req.Amount, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode amount-op amount: %w", err)
	}
	return req, expectEOF(r)
}

// AmountReply is the body of a successful DEPOSIT or WITHDRAW reply.
type AmountReply struct {
	NewBalance float64
}

// Encode serializes the reply body.
func (r *AmountReply) Encode() []byte {
	var buf bytes.Buffer
	_ = WriteFloat64(&buf, r.NewBalance)
	return buf.Bytes()
}

// DecodeAmountReply parses a successful DEPOSIT or WITHDRAW reply body.
func DecodeAmountReply(body []byte) (*AmountReply, error) {
	r := bytes.NewReader(body)
	rep := &AmountReply{}
	var err error
	if rep.NewBalance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode amount-op reply balance: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// QUERY_BALANCE
// ============================================================================

// QueryRequest is the body of a QUERY_BALANCE request.
type QueryRequest struct {
	Name      string
	AccountNo int32
	Password  string
}

// Encode serializes the request body in wire order.
func (r *QueryRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Name); err != nil {
		return nil, fmt.Errorf("encode QUERY_BALANCE name: %w", err)
	}
	_ = WriteInt32(&buf, r.AccountNo)
	if err := WritePassword16(&buf, r.Password); err != nil {
		return nil, fmt.Errorf("encode QUERY_BALANCE password: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeQueryRequest parses a QUERY_BALANCE request body.
func DecodeQueryRequest(body []byte) (*QueryRequest, error) {
	r := bytes.NewReader(body)
	req := &QueryRequest{}
	var err error
	if req.Name, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode QUERY_BALANCE name: %w", err)
	}
	if req.AccountNo, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode QUERY_BALANCE account: %w", err)
	}
	if req.Password, err = ReadPassword16(r); err != nil {
		return nil, fmt.Errorf("decode QUERY_BALANCE password: %w", err)
	}
	return req, expectEOF(r)
}

// QueryReply is the body of a successful QUERY_BALANCE reply.
type QueryReply struct {
	Currency Currency
	Balance  float64
}

// Encode serializes the reply body.
func (r *QueryReply) Encode() []byte {
	var buf bytes.Buffer
	_ = WriteUint16(&buf, uint16(r.Currency))
	_ = WriteFloat64(&buf, r.Balance)
	return buf.Bytes()
}

// DecodeQueryReply parses a successful QUERY_BALANCE reply body.
func DecodeQueryReply(body []byte) (*QueryReply, error) {
	r := bytes.NewReader(body)
	rep := &QueryReply{}
	cur, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode QUERY_BALANCE reply currency: %w", err)
	}
	rep.Currency = Currency(cur)
	if rep.Balance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode QUERY_BALANCE reply balance: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// TRANSFER
// ============================================================================

// TransferRequest is the body of a TRANSFER request. Authentication fields
// refer to the source account.
type TransferRequest struct {
	Name        string
	FromAccount int32
	Password    string
	ToAccount   int32
	Currency    Currency
	Amount      float64
}

// Encode serializes the request body in wire order.
func (r *TransferRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Name); err != nil {
		return nil, fmt.Errorf("encode TRANSFER name: %w", err)
	}
	_ = WriteInt32(&buf, r.FromAccount)
	if err := WritePassword16(&buf, r.Password); err != nil {
		return nil, fmt.Errorf("encode TRANSFER password: %w", err)
	}
	_ = WriteInt32(&buf, r.ToAccount)
	_ = WriteUint16(&buf, uint16(r.Currency))
	_ = WriteFloat64(&buf, r.Amount)
	return buf.Bytes(), nil
}

// DecodeTransferRequest parses a TRANSFER request body.
func DecodeTransferRequest(body []byte) (*TransferRequest, error) {
	r := bytes.NewReader(body)
	req := &TransferRequest{}
	var err error
	if req.Name, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER name: %w", err)
	}
	if req.FromAccount, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER source account: %w", err)
	}
	if req.Password, err = ReadPassword16(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER password: %w", err)
	}
	if req.ToAccount, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER destination account: %w", err)
	}
	cur, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode TRANSFER currency: %w", err)
	}
	req.Currency = Currency(cur)
	if req.Amount, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER amount: %w", err)
	}
	return req, expectEOF(r)
}

// TransferReply is the body of a successful TRANSFER reply.
type TransferReply struct {
	FromBalance float64
	ToBalance   float64
}

// Encode serializes the reply body.
func (r *TransferReply) Encode() []byte {
	var buf bytes.Buffer
	_ = WriteFloat64(&buf, r.FromBalance)
	_ = WriteFloat64(&buf, r.ToBalance)
	return buf.Bytes()
}

// DecodeTransferReply parses a successful TRANSFER reply body.
func DecodeTransferReply(body []byte) (*TransferReply, error) {
	r := bytes.NewReader(body)
	rep := &TransferReply{}
	var err error
	if rep.FromBalance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER reply source balance: %w", err)
	}
	if rep.ToBalance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode TRANSFER reply destination balance: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// MONITOR_REGISTER
// ============================================================================

// MonitorRequest is the body of a MONITOR_REGISTER request. Seconds is the
// subscription lifetime; zero is rejected by the server.
type MonitorRequest struct {
	Seconds uint16
}

// Encode serializes the request body.
func (r *MonitorRequest) Encode() []byte {
	var buf bytes.Buffer
	_ = WriteUint16(&buf, r.Seconds)
	return buf.Bytes()
}

// DecodeMonitorRequest parses a MONITOR_REGISTER request body.
func DecodeMonitorRequest(body []byte) (*MonitorRequest, error) {
	r := bytes.NewReader(body)
	req := &MonitorRequest{}
	var err error
	if req.Seconds, err = ReadUint16(r); err != nil {
		return nil, fmt.Errorf("decode MONITOR_REGISTER seconds: %w", err)
	}
	return req, expectEOF(r)
}

// MonitorReply is the body of a successful MONITOR_REGISTER reply.
type MonitorReply struct {
	Info string
}

// Encode serializes the reply body.
func (r *MonitorReply) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteString(&buf, r.Info); err != nil {
		return nil, fmt.Errorf("encode MONITOR_REGISTER reply info: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMonitorReply parses a successful MONITOR_REGISTER reply body.
func DecodeMonitorReply(body []byte) (*MonitorReply, error) {
	r := bytes.NewReader(body)
	rep := &MonitorReply{}
	var err error
	if rep.Info, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode MONITOR_REGISTER reply info: %w", err)
	}
	return rep, expectEOF(r)
}

// ============================================================================
// CALLBACK_UPDATE
// ============================================================================

// CallbackUpdate is the body of a monitor callback. UpdateType carries the
// opcode of the operation that changed the account.
type CallbackUpdate struct {
	UpdateType OpCode
	AccountNo  int32
	Currency   Currency
	NewBalance float64
	Info       string
}

// Encode serializes the callback body in wire order.
func (c *CallbackUpdate) Encode() ([]byte, error) {
	var buf bytes.Buffer
	_ = WriteUint16(&buf, uint16(c.UpdateType))
	_ = WriteInt32(&buf, c.AccountNo)
	_ = WriteUint16(&buf, uint16(c.Currency))
	_ = WriteFloat64(&buf, c.NewBalance)
	if err := WriteString(&buf, c.Info); err != nil {
		return nil, fmt.Errorf("encode CALLBACK_UPDATE info: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCallbackUpdate parses a callback body.
func DecodeCallbackUpdate(body []byte) (*CallbackUpdate, error) {
	r := bytes.NewReader(body)
	cb := &CallbackUpdate{}
	ut, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode CALLBACK_UPDATE type: %w", err)
	}
	cb.UpdateType = OpCode(ut)
	if cb.AccountNo, err = ReadInt32(r); err != nil {
		return nil, fmt.Errorf("decode CALLBACK_UPDATE account: %w", err)
	}
	cur, err := ReadUint16(r)
	if err != nil {
		return nil, fmt.Errorf("decode CALLBACK_UPDATE currency: %w", err)
	}
	cb.Currency = Currency(cur)
	if cb.NewBalance, err = ReadFloat64(r); err != nil {
		return nil, fmt.Errorf("decode CALLBACK_UPDATE balance: %w", err)
	}
	if cb.Info, err = ReadString(r); err != nil {
		return nil, fmt.Errorf("decode CALLBACK_UPDATE info: %w", err)
	}
	return cb, expectEOF(r)
}
