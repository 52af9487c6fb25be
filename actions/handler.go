package actions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
	"github.com/thesecretlab-dev/zkledger/storage"
)

var ErrUnknownProgram = errors.New("unknown program kind")

// Program is the schema-specific part of an account update: it decodes its
// input, applies its transform and returns the encoding to persist.
type Program interface {
	GetTypeID() uint8
	Name() string
	Execute(enc schema.Encoding, state []byte, payload []byte) ([]byte, error)
}

// ProgramByName returns the program registered under kind.
func ProgramByName(kind string) (Program, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case consts.CounterProgramName:
		return &IncrementCounter{}, nil
	case consts.RecordStoreProgramName:
		return &StoreProofRecord{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, kind)
	}
}

// DefaultEnforceOwnership reports whether p checks account ownership unless
// configured otherwise. The counter checks it, the record store does not.
func DefaultEnforceOwnership(p Program) bool {
	return p.GetTypeID() == consts.CounterID
}

// CallerContext identifies the program on whose behalf an update runs.
type CallerContext struct {
	ProgramID ids.ID
}

type Option func(*Handler)

func WithOwnershipCheck(enforce bool) Option {
	return func(h *Handler) {
		h.enforceOwnership = enforce
	}
}

func WithEncoding(enc schema.Encoding) Option {
	return func(h *Handler) {
		if enc != nil {
			h.encoding = enc
		}
	}
}

func WithLogger(log logging.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// Handler runs one Program against one account per invocation. It holds no
// mutable state of its own; the caller must serialize invocations that
// target the same account.
type Handler struct {
	program          Program
	enforceOwnership bool
	encoding         schema.Encoding
	log              logging.Logger
	metrics          *Metrics
}

func NewHandler(p Program, opts ...Option) *Handler {
	h := &Handler{
		program:          p,
		enforceOwnership: DefaultEnforceOwnership(p),
		encoding:         schema.Default,
		log:              logging.NoLog{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func NewCounterHandler(opts ...Option) *Handler {
	return NewHandler(&IncrementCounter{}, opts...)
}

func NewRecordStoreHandler(opts ...Option) *Handler {
	return NewHandler(&StoreProofRecord{}, opts...)
}

func (h *Handler) Program() Program {
	return h.program
}

func (h *Handler) EnforcesOwnership() bool {
	return h.enforceOwnership
}

func (h *Handler) Encoding() schema.Encoding {
	return h.encoding
}

// ProcessInstruction is the invocation entry point. Only the first account
// is read; the rest are ignored.
func (h *Handler) ProcessInstruction(programID ids.ID, accounts []*storage.Account, payload []byte) error {
	if len(accounts) == 0 || accounts[0] == nil {
		h.metrics.record(h.program.Name(), ids.Empty, 0, 0, ErrMissingAccount)
		return ErrMissingAccount
	}
	return h.Handle(CallerContext{ProgramID: programID}, accounts[0], payload)
}

// Handle validates and applies one update to acct. On error acct is left
// byte-for-byte unchanged.
func (h *Handler) Handle(caller CallerContext, acct *storage.Account, payload []byte) (err error) {
	var (
		start   = time.Now()
		written int
	)
	defer func() {
		h.metrics.record(h.program.Name(), acct.Address, written, time.Since(start), err)
	}()

	encoded, err := h.prepare(caller, acct, payload)
	if err != nil {
		return err
	}
	written = copy(acct.Data, encoded)
	h.log.Debug("account updated",
		zap.String("program", h.program.Name()),
		zap.Stringer("account", acct.Address),
		zap.Int("written", written),
	)
	return nil
}

// Apply computes the account buffer that Handle would leave behind without
// touching acct.
func (h *Handler) Apply(caller CallerContext, acct *storage.Account, payload []byte) ([]byte, error) {
	encoded, err := h.prepare(caller, acct, payload)
	if err != nil {
		return nil, err
	}
	next := append(make([]byte, 0, acct.Capacity()), acct.Data...)
	copy(next, encoded)
	return next, nil
}

func (h *Handler) prepare(caller CallerContext, acct *storage.Account, payload []byte) ([]byte, error) {
	h.log.Debug("processing instruction",
		zap.String("program", h.program.Name()),
		zap.Int("payloadLen", len(payload)),
		zap.Int("accountLen", acct.Capacity()),
	)

	if h.enforceOwnership && acct.Owner != caller.ProgramID {
		return nil, fmt.Errorf("%w: owner=%s caller=%s", ErrNotAuthorized, acct.Owner, caller.ProgramID)
	}

	encoded, err := h.program.Execute(h.encoding, acct.Data, payload)
	if err != nil {
		return nil, err
	}

	if len(encoded) > acct.Capacity() {
		h.log.Debug("account data too small",
			zap.Int("capacity", acct.Capacity()),
			zap.Int("required", len(encoded)),
		)
		return nil, fmt.Errorf("%w: required=%d capacity=%d", ErrInsufficientCapacity, len(encoded), acct.Capacity())
	}
	return encoded, nil
}
