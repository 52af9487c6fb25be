package vm

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/gorilla/rpc/v2"

	avajson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
)

const JSONRPCEndpoint = "/zkledger"

// NewJSONRPCHandler serves vm's methods as "zkledger.<method>".
func NewJSONRPCHandler(vm *VM) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(avajson.NewCodec(), "application/json")
	server.RegisterCodec(avajson.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(NewJSONRPCServer(vm), consts.Name); err != nil {
		return nil, err
	}
	return server, nil
}

// NewHTTPHandler mounts the JSON-RPC handler at JSONRPCEndpoint.
func NewHTTPHandler(vm *VM) (http.Handler, error) {
	handler, err := NewJSONRPCHandler(vm)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(JSONRPCEndpoint, handler)
	return mux, nil
}

type JSONRPCServer struct {
	vm *VM
}

func NewJSONRPCServer(vm *VM) *JSONRPCServer {
	return &JSONRPCServer{vm: vm}
}

type AccountArgs struct {
	Address ids.ID `json:"address"`
}

type AccountReply struct {
	Address  ids.ID `json:"address"`
	Owner    ids.ID `json:"owner"`
	Capacity int    `json:"capacity"`
	Data     []byte `json:"data"`
}

func (j *JSONRPCServer) Account(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	acct, err := j.vm.Account(req.Context(), args.Address)
	if err != nil {
		return err
	}
	reply.Address = acct.Address
	reply.Owner = acct.Owner
	reply.Capacity = acct.Capacity()
	reply.Data = acct.Data
	return nil
}

type CounterReply struct {
	Count uint32 `json:"count"`
}

func (j *JSONRPCServer) Counter(req *http.Request, args *AccountArgs, reply *CounterReply) error {
	acct, err := j.vm.Account(req.Context(), args.Address)
	if err != nil {
		return err
	}
	c, err := j.vm.Encoding().DecodeCounter(acct.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", actions.ErrMalformedState, err)
	}
	reply.Count = c.Count
	return nil
}

type RecordReply struct {
	Proof         []byte `json:"proof"`
	VerifyingKey  []byte `json:"verifyingKey"`
	PublicWitness []byte `json:"publicWitness"`
	Size          int    `json:"size"`
	Digest        ids.ID `json:"digest"`
}

// Record decodes the proof record at the start of the account, ignoring the
// unused tail of the buffer.
func (j *JSONRPCServer) Record(req *http.Request, args *AccountArgs, reply *RecordReply) error {
	acct, err := j.vm.Account(req.Context(), args.Address)
	if err != nil {
		return err
	}
	r, n, err := j.vm.Encoding().DecodeRecordPrefix(acct.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", actions.ErrMalformedState, err)
	}
	reply.Proof = r.Proof
	reply.VerifyingKey = r.VerifyingKey
	reply.PublicWitness = r.PublicWitness
	reply.Size = n
	reply.Digest = actions.ComputeRecordDigest(acct.Address, r)
	return nil
}

type CreateAccountArgs struct {
	Address  ids.ID `json:"address"`
	Owner    ids.ID `json:"owner"`
	Capacity int    `json:"capacity"`
}

func (j *JSONRPCServer) CreateAccount(req *http.Request, args *CreateAccountArgs, reply *AccountReply) error {
	acct, err := j.vm.CreateAccount(req.Context(), args.Address, args.Owner, args.Capacity)
	if err != nil {
		return err
	}
	reply.Address = acct.Address
	reply.Owner = acct.Owner
	reply.Capacity = acct.Capacity()
	reply.Data = acct.Data
	return nil
}

func (j *JSONRPCServer) Invoke(req *http.Request, args *Invocation, reply *Receipt) error {
	receipt, err := j.vm.Invoke(req.Context(), *args)
	if err != nil {
		return err
	}
	*reply = *receipt
	return nil
}

type ProgramsReply struct {
	Programs map[string]string `json:"programs"`
}

func (j *JSONRPCServer) Programs(_ *http.Request, _ *struct{}, reply *ProgramsReply) error {
	programs := j.vm.Programs()
	reply.Programs = make(map[string]string, len(programs))
	for id, kind := range programs {
		reply.Programs[id.String()] = kind
	}
	return nil
}

type MetricsArgs struct {
	Limit           uint32 `json:"limit"`
	IncludeAccounts bool   `json:"includeAccounts"`
}

func (j *JSONRPCServer) Metrics(_ *http.Request, args *MetricsArgs, reply *actions.MetricsSnapshot) error {
	*reply = j.vm.Metrics().Snapshot(int(args.Limit), args.IncludeAccounts)
	return nil
}

type MetricsResetReply struct {
	Reset bool `json:"reset"`
}

func (j *JSONRPCServer) MetricsReset(_ *http.Request, _ *struct{}, reply *MetricsResetReply) error {
	j.vm.Metrics().Reset()
	reply.Reset = true
	return nil
}
