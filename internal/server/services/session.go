// Package services holds the session manager: registration, login, token
// refresh and logout, password change and profile updates. Each operation
// returns a Result for the transport layer or an error carrying exactly one
// common error kind.
package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/media"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
)

// TokenIssuer is the part of auth.Issuer the session manager needs.
type TokenIssuer interface {
	IssueAccessToken(userID string) (auth.Token, error)
	IssueRefreshToken(userID string) (auth.Token, error)
	VerifyAccessToken(token string) (string, error)
	VerifyRefreshToken(token string) (string, error)
}

// Recorder receives one observation per finished operation.
type Recorder interface {
	Observe(operation, outcome string, elapsed time.Duration)
}

type SessionManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	issuer      TokenIssuer
	uploader    media.Uploader
	log         logging.Logger
	recorder    Recorder

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*SessionManager)

func WithRecorder(r Recorder) Option {
	return func(s *SessionManager) { s.recorder = r }
}

func NewSessionManager(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher,
	issuer TokenIssuer, uploader media.Uploader, log logging.Logger, opts ...Option) *SessionManager {
	s := &SessionManager{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		uploader:    uploader,
		log:         log.With("module", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionManager) users() users.Repository {
	return s.repomanager.Users(s.db)
}

// observe is deferred by every operation with a pointer to its named error.
func (s *SessionManager) observe(ctx context.Context, operation string, started time.Time, errp *error) {
	err := *errp
	outcome := "ok"
	if err != nil {
		kind := common.KindOf(err)
		outcome = kind.String()
		if kind == common.KindInternal || kind == common.KindUpstream {
			s.log.Error(ctx, operation+" failed", "error", err)
		} else {
			s.log.Debug(ctx, operation+" rejected", "kind", outcome)
		}
	}
	if s.recorder != nil {
		s.recorder.Observe(operation, outcome, time.Since(started))
	}
}

// verifyDummy burns one hash verification so unknown users take about as long
// to reject as known ones.
func (s *SessionManager) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
