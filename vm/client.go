package vm

import (
	"context"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
)

const counterCheckInterval = 500 * time.Millisecond

type JSONRPCClient struct {
	requester rpc.EndpointRequester
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{
		requester: rpc.NewEndpointRequester(uri),
	}
}

func (cli *JSONRPCClient) send(ctx context.Context, method string, args interface{}, reply interface{}) error {
	return cli.requester.SendRequest(ctx, consts.Name+"."+method, args, reply)
}

func (cli *JSONRPCClient) Account(ctx context.Context, addr ids.ID) (*AccountReply, error) {
	resp := new(AccountReply)
	err := cli.send(ctx, "account", &AccountArgs{Address: addr}, resp)
	return resp, err
}

func (cli *JSONRPCClient) Counter(ctx context.Context, addr ids.ID) (uint32, error) {
	resp := new(CounterReply)
	err := cli.send(ctx, "counter", &AccountArgs{Address: addr}, resp)
	return resp.Count, err
}

func (cli *JSONRPCClient) Record(ctx context.Context, addr ids.ID) (*RecordReply, error) {
	resp := new(RecordReply)
	err := cli.send(ctx, "record", &AccountArgs{Address: addr}, resp)
	return resp, err
}

func (cli *JSONRPCClient) CreateAccount(ctx context.Context, addr ids.ID, owner ids.ID, capacity int) (*AccountReply, error) {
	resp := new(AccountReply)
	err := cli.send(
		ctx,
		"createAccount",
		&CreateAccountArgs{
			Address:  addr,
			Owner:    owner,
			Capacity: capacity,
		},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Invoke(ctx context.Context, inv Invocation) (*Receipt, error) {
	resp := new(Receipt)
	err := cli.send(ctx, "invoke", &inv, resp)
	return resp, err
}

func (cli *JSONRPCClient) Programs(ctx context.Context) (map[string]string, error) {
	resp := new(ProgramsReply)
	err := cli.send(ctx, "programs", struct{}{}, resp)
	return resp.Programs, err
}

func (cli *JSONRPCClient) Metrics(ctx context.Context, limit uint32, includeAccounts bool) (*actions.MetricsSnapshot, error) {
	resp := new(actions.MetricsSnapshot)
	err := cli.send(
		ctx,
		"metrics",
		&MetricsArgs{
			Limit:           limit,
			IncludeAccounts: includeAccounts,
		},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) ResetMetrics(ctx context.Context) error {
	return cli.send(ctx, "metricsReset", struct{}{}, new(MetricsResetReply))
}

// WaitForCounter polls addr until its counter reaches min or ctx is done.
func (cli *JSONRPCClient) WaitForCounter(ctx context.Context, addr ids.ID, min uint32) error {
	ticker := time.NewTicker(counterCheckInterval)
	defer ticker.Stop()
	for {
		count, err := cli.Counter(ctx, addr)
		if err != nil {
			return err
		}
		if count >= min {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
