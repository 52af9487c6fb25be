package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/genesis"
	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/storage"
)

var (
	ErrUnknownProgram    = errors.New("unknown program")
	ErrProgramRegistered = errors.New("program already registered")
)

// Invocation is one call into a registered program. Accounts are resolved
// from the database in order; only the first is handed to the program.
type Invocation struct {
	ProgramID ids.ID   `json:"programID"`
	Accounts  []ids.ID `json:"accounts"`
	Data      []byte   `json:"data"`
}

// Receipt reports the outcome of an Invocation that reached its handler.
type Receipt struct {
	ProgramID ids.ID            `json:"programID"`
	Account   ids.ID            `json:"account"`
	Code      actions.ErrorCode `json:"code"`
	Error     string            `json:"error,omitempty"`
}

func (r *Receipt) Success() bool {
	return r.Code == actions.CodeOK
}

// Err returns the handler sentinel matching the receipt code.
func (r *Receipt) Err() error {
	return r.Code.Err()
}

// VM hosts the account store and the programs allowed to update it.
// Invocations are serialized.
type VM struct {
	config   Config
	encoding schema.Encoding
	log      logging.Logger
	metrics  *actions.Metrics

	mu       sync.Mutex
	db       database.KeyValueReaderWriter
	programs map[ids.ID]*actions.Handler
}

func New(cfg Config, db database.KeyValueReaderWriter, log logging.Logger, reg prometheus.Registerer) (*VM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := schema.ByName(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NoLog{}
	}
	metrics, err := actions.NewMetrics(cfg.MetricsMaxAccounts, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return &VM{
		config:   cfg,
		encoding: enc,
		log:      log,
		metrics:  metrics,
		db:       db,
		programs: make(map[ids.ID]*actions.Handler),
	}, nil
}

func (vm *VM) Config() Config {
	return vm.config
}

func (vm *VM) Encoding() schema.Encoding {
	return vm.encoding
}

func (vm *VM) Metrics() *actions.Metrics {
	return vm.metrics
}

// NewHandler builds a handler for program p wired to the VM's encoding,
// logger and metrics.
func (vm *VM) NewHandler(p actions.Program, opts ...actions.Option) *actions.Handler {
	base := []actions.Option{
		actions.WithEncoding(vm.encoding),
		actions.WithLogger(vm.log),
		actions.WithMetrics(vm.metrics),
	}
	return actions.NewHandler(p, append(base, opts...)...)
}

func (vm *VM) RegisterProgram(id ids.ID, h *actions.Handler) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, ok := vm.programs[id]; ok {
		return fmt.Errorf("%w: %s", ErrProgramRegistered, id)
	}
	vm.programs[id] = h
	vm.log.Info("registered program",
		zap.Stringer("programID", id),
		zap.String("kind", h.Program().Name()),
		zap.Bool("enforceOwnership", h.EnforcesOwnership()),
	)
	return nil
}

// Programs returns the registered program kinds by id.
func (vm *VM) Programs() map[ids.ID]string {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	out := make(map[ids.ID]string, len(vm.programs))
	for id, h := range vm.programs {
		out[id] = h.Program().Name()
	}
	return out
}

func (vm *VM) Program(id ids.ID) (*actions.Handler, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	h, ok := vm.programs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, id)
	}
	return h, nil
}

func (vm *VM) CreateAccount(ctx context.Context, addr ids.ID, owner ids.ID, capacity int) (*storage.Account, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	acct, err := storage.CreateAccount(ctx, vm.db, addr, owner, capacity)
	if err != nil {
		return nil, err
	}
	vm.log.Debug("created account",
		zap.Stringer("address", addr),
		zap.Stringer("owner", owner),
		zap.Int("capacity", capacity),
	)
	return acct, nil
}

func (vm *VM) Account(ctx context.Context, addr ids.ID) (*storage.Account, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return storage.GetAccount(ctx, vm.db, addr)
}

// Invoke runs inv against a copy of its first account and persists the copy
// only when the handler succeeds. Handler rejections are reported through
// the receipt; the returned error covers lookup and storage failures.
func (vm *VM) Invoke(ctx context.Context, inv Invocation) (*Receipt, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	h, ok := vm.programs[inv.ProgramID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, inv.ProgramID)
	}

	accounts := make([]*storage.Account, 0, len(inv.Accounts))
	for _, addr := range inv.Accounts {
		acct, err := storage.GetAccount(ctx, vm.db, addr)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct.Clone())
	}

	receipt := &Receipt{ProgramID: inv.ProgramID}
	if len(accounts) > 0 {
		receipt.Account = accounts[0].Address
	}
	if err := h.ProcessInstruction(inv.ProgramID, accounts, inv.Data); err != nil {
		receipt.Code = actions.CodeOf(err)
		receipt.Error = err.Error()
		vm.log.Debug("invocation rejected",
			zap.Stringer("programID", inv.ProgramID),
			zap.Stringer("account", receipt.Account),
			zap.Stringer("code", receipt.Code),
			zap.Error(err),
		)
		return receipt, nil
	}
	if err := storage.PutAccount(ctx, vm.db, accounts[0]); err != nil {
		return nil, err
	}
	return receipt, nil
}

// InitializeGenesis registers g's programs and allocates its accounts.
// Accounts already present in the database keep their stored contents.
func (vm *VM) InitializeGenesis(ctx context.Context, g *genesis.Genesis) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, p := range g.Programs {
		program, err := actions.ProgramByName(p.Kind)
		if err != nil {
			return err
		}
		var opts []actions.Option
		if p.EnforceOwnership != nil {
			opts = append(opts, actions.WithOwnershipCheck(*p.EnforceOwnership))
		}
		if err := vm.RegisterProgram(p.ID, vm.NewHandler(program, opts...)); err != nil {
			return err
		}
	}
	for _, a := range g.Accounts {
		data, err := a.Bytes()
		if err != nil {
			return err
		}
		acct, err := vm.CreateAccount(ctx, a.Address, a.Owner, a.Capacity)
		if errors.Is(err, storage.ErrAccountExists) {
			vm.log.Info("keeping existing genesis account", zap.Stringer("address", a.Address))
			continue
		}
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		copy(acct.Data, data)
		vm.mu.Lock()
		err = storage.PutAccount(ctx, vm.db, acct)
		vm.mu.Unlock()
		if err != nil {
			return err
		}
	}
	vm.log.Info("initialized genesis",
		zap.Int("programs", len(g.Programs)),
		zap.Int("accounts", len(g.Accounts)),
	)
	return nil
}
