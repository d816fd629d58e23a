package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const (
	defaultSaleDescription    = "Sale"
	defaultExpenseDescription = "Expense"
	defaultCurrency           = "USDT"
	maxCustomCategoryLen      = 30
)

// LedgerService implements ports.LedgerService on top of a LedgerRepository.
type LedgerService struct {
	repo   ports.LedgerRepository
	idem   ports.IdempotencyStore
	logger zerolog.Logger
}

var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService returns a LedgerService. idem may be nil, in which case
// idempotency keys are ignored.
func NewLedgerService(repo ports.LedgerRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *LedgerService {
	return &LedgerService{repo: repo, idem: idem, logger: logger}
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession opens a session for the actor. Names are 3-50 characters and
// unique per owner, ignoring case.
func (s *LedgerService) CreateSession(ctx context.Context, actor ports.Actor, in domain.SessionInput) (*domain.Session, error) {
	name, err := validSessionName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.Budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", domain.ErrInvalidInput)
	}
	if err := s.ensureUniqueName(ctx, actor.UserID, name, 0); err != nil {
		return nil, err
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	id, err := s.repo.CreateSession(ctx, domain.SessionInput{
		OwnerID:  actor.UserID,
		Name:     name,
		Budget:   in.Budget,
		Currency: currency,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", actor.UserID).Msg("failed to create session")
		return nil, err
	}
	return s.repo.GetSession(ctx, id)
}

// ListSessions returns the actor's own sessions, newest first.
func (s *LedgerService) ListSessions(ctx context.Context, actor ports.Actor) ([]domain.Session, error) {
	return s.repo.ListSessions(ctx, actor.UserID)
}

// GetSession returns the session with its totals.
func (s *LedgerService) GetSession(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.SessionView, error) {
	if _, err := s.authorize(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	return s.repo.SessionView(ctx, sessionID)
}

// UpdateSession renames the session and/or changes its budget. Settings stay
// editable after the session is closed.
func (s *LedgerService) UpdateSession(ctx context.Context, actor ports.Actor, sessionID int64, in ports.UpdateSessionInput) (*domain.SessionView, error) {
	sess, err := s.authorize(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if in.Name == nil && in.Budget == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	if in.Name != nil {
		name, err := validSessionName(*in.Name)
		if err != nil {
			return nil, err
		}
		if err := s.ensureUniqueName(ctx, sess.OwnerID, name, sessionID); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateField(ctx, domain.CollectionSessions, sessionID, "name", name); err != nil {
			return nil, err
		}
	}
	if in.Budget != nil {
		if *in.Budget <= 0 {
			return nil, fmt.Errorf("%w: budget must be positive", domain.ErrInvalidInput)
		}
		if err := s.repo.UpdateField(ctx, domain.CollectionSessions, sessionID, "budget", *in.Budget); err != nil {
			return nil, err
		}
	}
	return s.repo.SessionView(ctx, sessionID)
}

// CloseSession closes the session and returns its final totals.
func (s *LedgerService) CloseSession(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.SessionView, error) {
	if _, err := s.authorize(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	if err := s.repo.CloseSession(ctx, sessionID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("session_id", sessionID).Int64("user_id", actor.UserID).Msg("session closed")
	return s.repo.SessionView(ctx, sessionID)
}

// ResetSession removes every transaction and debt of an active session.
func (s *LedgerService) ResetSession(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.SessionView, error) {
	if _, err := s.authorize(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	n, err := s.repo.ResetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("session_id", sessionID).Int("removed", n).Msg("session reset")
	return s.repo.SessionView(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// AddTransaction records a sale or an expense. When an idempotency key is
// given and was seen before, the earlier transaction is returned instead.
func (s *LedgerService) AddTransaction(ctx context.Context, actor ports.Actor, in ports.AddTransactionInput) (*ports.TransactionResult, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if in.ExpenseAmount < 0 {
		return nil, fmt.Errorf("%w: expense_amount must not be negative", domain.ErrInvalidInput)
	}
	if _, err := s.authorize(ctx, actor, in.SessionID); err != nil {
		return nil, err
	}

	if id, ok := s.replay(ctx, actor, "transaction", in.SessionID, in.IdempotencyKey); ok {
		if t, err := s.repo.GetTransaction(ctx, id); err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Int64("transaction_id", id).Msg("idempotent replay")
			return &ports.TransactionResult{Transaction: *t, AlreadyExisted: true}, nil
		}
	}

	input := in.TransactionInput
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		input.Description = defaultDescription(input.Type)
	}

	id, err := s.repo.AddTransaction(ctx, input)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, actor, "transaction", in.SessionID, in.IdempotencyKey, id)

	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.TransactionResult{Transaction: *t}, nil
}

// AddQuickExpense records an expense described as "Quick expense: <category>".
// Custom categories are cut to 30 characters.
func (s *LedgerService) AddQuickExpense(ctx context.Context, actor ports.Actor, in ports.QuickExpenseInput) (*ports.TransactionResult, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(category) > maxCustomCategoryLen {
		category = string([]rune(category)[:maxCustomCategoryLen])
	}
	return s.AddTransaction(ctx, actor, ports.AddTransactionInput{
		TransactionInput: domain.TransactionInput{
			SessionID:   in.SessionID,
			Type:        domain.TransactionExpense,
			Amount:      in.Amount,
			Description: analytics.QuickExpensePrefix + " " + category,
		},
		IdempotencyKey: in.IdempotencyKey,
	})
}

// ListTransactions lists a session's transactions newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, actor ports.Actor, f domain.ListFilter) ([]domain.Transaction, error) {
	if f.Type != "" && !domain.TransactionType(f.Type).Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, f.Type)
	}
	if _, err := s.authorize(ctx, actor, f.SessionID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, f)
}

// UpdateTransaction changes one field of a transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, actor ports.Actor, id int64, field string, value any) (*domain.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, t.SessionID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateField(ctx, domain.CollectionTransactions, id, field, value); err != nil {
		return nil, err
	}
	return s.repo.GetTransaction(ctx, id)
}

// DeleteTransaction removes a transaction from an active session.
func (s *LedgerService) DeleteTransaction(ctx context.Context, actor ports.Actor, id int64) error {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, t.SessionID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, domain.CollectionTransactions, id)
}

// ---------------------------------------------------------------------------
// Debts
// ---------------------------------------------------------------------------

// AddDebt records a receivable or payable.
func (s *LedgerService) AddDebt(ctx context.Context, actor ports.Actor, in ports.AddDebtInput) (*ports.DebtResult, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown debt type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	input := in.DebtInput
	input.PersonName = strings.TrimSpace(input.PersonName)
	input.Description = strings.TrimSpace(input.Description)
	if input.PersonName == "" {
		return nil, fmt.Errorf("%w: person_name is required", domain.ErrInvalidInput)
	}
	if _, err := s.authorize(ctx, actor, in.SessionID); err != nil {
		return nil, err
	}

	if id, ok := s.replay(ctx, actor, "debt", in.SessionID, in.IdempotencyKey); ok {
		if d, err := s.repo.GetDebt(ctx, id); err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Int64("debt_id", id).Msg("idempotent replay")
			return &ports.DebtResult{Debt: *d, AlreadyExisted: true}, nil
		}
	}

	id, err := s.repo.AddDebt(ctx, input)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, actor, "debt", in.SessionID, in.IdempotencyKey, id)

	d, err := s.repo.GetDebt(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.DebtResult{Debt: *d}, nil
}

// ListDebts lists a session's debts newest first.
func (s *LedgerService) ListDebts(ctx context.Context, actor ports.Actor, f domain.ListFilter) ([]domain.Debt, error) {
	if f.Type != "" && !domain.DebtType(f.Type).Valid() {
		return nil, fmt.Errorf("%w: unknown debt type %q", domain.ErrInvalidInput, f.Type)
	}
	if _, err := s.authorize(ctx, actor, f.SessionID); err != nil {
		return nil, err
	}
	return s.repo.ListDebts(ctx, f)
}

// UpdateDebt changes one field of a debt.
func (s *LedgerService) UpdateDebt(ctx context.Context, actor ports.Actor, id int64, field string, value any) (*domain.Debt, error) {
	d, err := s.repo.GetDebt(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, d.SessionID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateField(ctx, domain.CollectionDebts, id, field, value); err != nil {
		return nil, err
	}
	return s.repo.GetDebt(ctx, id)
}

// RepayDebt marks a debt as repaid.
func (s *LedgerService) RepayDebt(ctx context.Context, actor ports.Actor, id int64) (*domain.Debt, error) {
	return s.UpdateDebt(ctx, actor, id, "is_repaid", true)
}

// DeleteDebt removes a debt.
func (s *LedgerService) DeleteDebt(ctx context.Context, actor ports.Actor, id int64) error {
	d, err := s.repo.GetDebt(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, d.SessionID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, domain.CollectionDebts, id)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// authorize loads the session and checks the actor may act on it.
func (s *LedgerService) authorize(ctx context.Context, actor ports.Actor, sessionID int64) (*domain.Session, error) {
	return authorizeSession(ctx, s.repo, actor, sessionID)
}

func authorizeSession(ctx context.Context, repo ports.LedgerRepository, actor ports.Actor, sessionID int64) (*domain.Session, error) {
	sess, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && sess.OwnerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return sess, nil
}

func (s *LedgerService) ensureUniqueName(ctx context.Context, ownerID int64, name string, except int64) error {
	sessions, err := s.repo.ListSessions(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, existing := range sessions {
		if existing.ID != except && strings.EqualFold(existing.Name, name) {
			return domain.ErrDuplicateSession
		}
	}
	return nil
}

// replay looks up a previously stored idempotency key. Lookup failures are
// logged and treated as a miss.
func (s *LedgerService) replay(ctx context.Context, actor ports.Actor, kind string, sessionID int64, key string) (int64, bool) {
	if s.idem == nil || key == "" {
		return 0, false
	}
	id, ok, err := s.idem.Lookup(ctx, idempotencyKey(actor, kind, sessionID, key))
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, processing anyway")
		return 0, false
	}
	return id, ok
}

func (s *LedgerService) remember(ctx context.Context, actor ports.Actor, kind string, sessionID int64, key string, id int64) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Remember(ctx, idempotencyKey(actor, kind, sessionID, key), id); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}

// idempotencyKey scopes a client key to the caller, the session and the
// record kind.
func idempotencyKey(actor ports.Actor, kind string, sessionID int64, key string) string {
	return kind + ":" + strconv.FormatInt(actor.UserID, 10) + ":" + strconv.FormatInt(sessionID, 10) + ":" + key
}

func validSessionName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < domain.MinSessionNameLen || n > domain.MaxSessionNameLen {
		return "", fmt.Errorf("%w: name must be %d-%d characters", domain.ErrInvalidInput, domain.MinSessionNameLen, domain.MaxSessionNameLen)
	}
	return name, nil
}

func defaultDescription(t domain.TransactionType) string {
	if t == domain.TransactionExpense {
		return defaultExpenseDescription
	}
	return defaultSaleDescription
}
