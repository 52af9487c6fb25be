// zkledger-smoke: end-to-end check against a running node. Increments a
// counter, stores a proof record and checks that rejected invocations leave
// accounts untouched.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/vm"
)

type Report struct {
	Pass    bool   `json:"pass"`
	Error   string `json:"error,omitempty"`
	Steps   []Step `json:"steps"`
	Summary struct {
		CounterAccount string `json:"counter_account,omitempty"`
		CounterBefore  uint32 `json:"counter_before"`
		CounterAfter   uint32 `json:"counter_after"`
		RecordAccount  string `json:"record_account,omitempty"`
		RecordSize     int    `json:"record_size"`
	} `json:"summary"`
}

type Step struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	nodeURL := os.Getenv("NODE_URL")
	if nodeURL == "" {
		nodeURL = "http://127.0.0.1:9650"
	}
	enc, err := schema.ByName(os.Getenv("ZKLEDGER_ENCODING"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	report := &Report{}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := run(ctx, vm.NewJSONRPCClient(nodeURL), enc, report); err != nil {
		report.Pass = false
		report.Error = err.Error()
	} else {
		report.Pass = true
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))

	if !report.Pass {
		os.Exit(1)
	}
}

func (r *Report) step(name string, err error, detail string) error {
	s := Step{Name: name, Pass: err == nil, Detail: detail}
	if err != nil {
		s.Error = err.Error()
	}
	r.Steps = append(r.Steps, s)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func newAddress() (ids.ID, error) {
	var id ids.ID
	_, err := rand.Read(id[:])
	return id, err
}

func run(ctx context.Context, cli *vm.JSONRPCClient, enc schema.Encoding, report *Report) error {
	// Step 1: counter account owned by the counter program
	counterAddr, err := newAddress()
	if err != nil {
		return err
	}
	_, err = cli.CreateAccount(ctx, counterAddr, consts.CounterProgramID, 16)
	if err := report.step("create_counter_account", err, counterAddr.String()); err != nil {
		return err
	}
	report.Summary.CounterAccount = counterAddr.String()

	before, err := cli.Counter(ctx, counterAddr)
	if err := report.step("query_counter", err, fmt.Sprintf("count=%d", before)); err != nil {
		return err
	}
	report.Summary.CounterBefore = before

	// Step 2: increment twice
	for i := 0; i < 2; i++ {
		receipt, err := cli.Invoke(ctx, vm.Invocation{
			ProgramID: consts.CounterProgramID,
			Accounts:  []ids.ID{counterAddr},
		})
		if err == nil && !receipt.Success() {
			err = receipt.Err()
		}
		if err := report.step("increment_counter", err, ""); err != nil {
			return err
		}
	}
	err = cli.WaitForCounter(ctx, counterAddr, before+2)
	after, _ := cli.Counter(ctx, counterAddr)
	if err := report.step("verify_counter", err, fmt.Sprintf("count=%d", after)); err != nil {
		return err
	}
	report.Summary.CounterAfter = after

	// Step 3: a foreign owner must be refused without touching the account
	foreignAddr, err := newAddress()
	if err != nil {
		return err
	}
	if _, err := cli.CreateAccount(ctx, foreignAddr, consts.RecordStoreProgramID, 4); err != nil {
		return report.step("create_foreign_account", err, "")
	}
	receipt, err := cli.Invoke(ctx, vm.Invocation{
		ProgramID: consts.CounterProgramID,
		Accounts:  []ids.ID{foreignAddr},
	})
	if err == nil && receipt.Code != actions.CodeNotAuthorized {
		err = fmt.Errorf("expected %s, got %s", actions.CodeNotAuthorized, receipt.Code)
	}
	if err := report.step("reject_foreign_owner", err, ""); err != nil {
		return err
	}

	// Step 4: store a record and read it back
	rec := schema.ProofRecord{
		Proof:         []byte("smoke-proof"),
		VerifyingKey:  []byte("smoke-vk"),
		PublicWitness: []byte{1, 2, 3},
	}
	payload, err := actions.BuildProofRecordPayload(enc, rec)
	if err != nil {
		return err
	}
	recordAddr, err := newAddress()
	if err != nil {
		return err
	}
	_, err = cli.CreateAccount(ctx, recordAddr, consts.RecordStoreProgramID, len(payload)+8)
	if err := report.step("create_record_account", err, recordAddr.String()); err != nil {
		return err
	}
	report.Summary.RecordAccount = recordAddr.String()

	receipt, err = cli.Invoke(ctx, vm.Invocation{
		ProgramID: consts.RecordStoreProgramID,
		Accounts:  []ids.ID{recordAddr},
		Data:      payload,
	})
	if err == nil && !receipt.Success() {
		err = receipt.Err()
	}
	if err := report.step("store_record", err, fmt.Sprintf("payload=%d bytes", len(payload))); err != nil {
		return err
	}

	stored, err := cli.Record(ctx, recordAddr)
	if err == nil && (!bytes.Equal(stored.Proof, rec.Proof) ||
		!bytes.Equal(stored.VerifyingKey, rec.VerifyingKey) ||
		!bytes.Equal(stored.PublicWitness, rec.PublicWitness)) {
		err = fmt.Errorf("stored record does not match")
	}
	if err := report.step("verify_record", err, ""); err != nil {
		return err
	}
	report.Summary.RecordSize = stored.Size

	// Step 5: an oversized record is refused
	tooSmall, err := newAddress()
	if err != nil {
		return err
	}
	if _, err := cli.CreateAccount(ctx, tooSmall, consts.RecordStoreProgramID, 10); err != nil {
		return report.step("create_small_account", err, "")
	}
	receipt, err = cli.Invoke(ctx, vm.Invocation{
		ProgramID: consts.RecordStoreProgramID,
		Accounts:  []ids.ID{tooSmall},
		Data:      payload,
	})
	if err == nil && receipt.Code != actions.CodeInsufficientCapacity {
		err = fmt.Errorf("expected %s, got %s", actions.CodeInsufficientCapacity, receipt.Code)
	}
	return report.step("reject_small_account", err, "")
}
