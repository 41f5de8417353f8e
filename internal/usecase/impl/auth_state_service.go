package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"daysoff/config"
	"daysoff/internal/domain/entity"
	"daysoff/internal/domain/service"
	"daysoff/internal/usecase"
)

// authStateService implements the AuthStateUsecase interface. It mirrors the
// session store for code running outside a request: a single goroutine owns
// the state, consuming auth events from the bus and applying them in order.
type authStateService struct {
	auth   usecase.AuthUsecase
	bus    service.AuthEventBus
	logger *slog.Logger

	initTimeout time.Duration
	dedupWindow time.Duration

	mu       sync.RWMutex
	state    usecase.AuthStateSnapshot
	initing  bool
	lastSeen map[service.AuthEventType]time.Time

	cancelSub func()
	stopOnce  sync.Once
	done      chan struct{}
}

// NewAuthStateService is the constructor for authStateService.
func NewAuthStateService(
	auth usecase.AuthUsecase,
	bus service.AuthEventBus,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthStateUsecase {
	initTimeout := 10 * time.Second
	dedupWindow := 2 * time.Second
	if cfg != nil && cfg.AuthState != nil {
		if cfg.AuthState.InitTimeout > 0 {
			initTimeout = cfg.AuthState.InitTimeout
		}
		if cfg.AuthState.DedupWindow > 0 {
			dedupWindow = cfg.AuthState.DedupWindow
		}
	}

	return &authStateService{
		auth:        auth,
		bus:         bus,
		logger:      logger,
		initTimeout: initTimeout,
		dedupWindow: dedupWindow,
		state:       usecase.AuthStateSnapshot{IsLoading: true},
		lastSeen:    make(map[service.AuthEventType]time.Time),
		done:        make(chan struct{}),
	}
}

// Start resolves the initial state and begins consuming auth events. The
// initial resolution is bounded by the configured timeout; past it the state
// settles on unauthenticated so nothing waits on a loading snapshot forever.
func (srv *authStateService) Start(ctx context.Context) error {
	srv.mu.Lock()
	srv.initing = true
	srv.mu.Unlock()

	events, cancel := srv.bus.Subscribe()
	srv.mu.Lock()
	srv.cancelSub = cancel
	srv.mu.Unlock()

	go srv.consume(events)

	initCtx, cancelInit := context.WithTimeout(ctx, srv.initTimeout)
	go func() {
		defer cancelInit()

		resolved := make(chan struct{})
		go func() {
			srv.resolveInitial(initCtx)
			close(resolved)
		}()

		// The timeout bounds initial resolution: past it the state is forced
		// to a settled, unauthenticated answer so nothing waits on a loading
		// snapshot forever.
		select {
		case <-resolved:
		case <-initCtx.Done():
			srv.settle(nil, nil)
			srv.logger.Warn("Auth state init timed out, settling unauthenticated")
		case <-srv.done:
		}
	}()

	return nil
}

// resolveInitial performs the first identity resolution. A session already
// installed via SetSession is re-verified; otherwise the process starts
// unauthenticated. A signed_in event racing with init defers to init
// completing (the init path is the single writer until loading ends).
func (srv *authStateService) resolveInitial(ctx context.Context) {
	srv.mu.RLock()
	session := srv.state.Session
	srv.mu.RUnlock()

	var user *entity.User
	if session != nil {
		verified, err := srv.auth.VerifyUser(ctx, session.AccessToken)
		if err != nil {
			srv.logger.Warn("Initial session verification failed", slog.Any("error", err))
			session = nil
		} else {
			user = verified
		}
	}

	srv.settle(user, session)
	srv.logger.Debug("Auth state initialized", slog.Bool("authenticated", user != nil))
}

// settle finalizes initialization exactly once; later callers lose.
func (srv *authStateService) settle(user *entity.User, session *entity.Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if !srv.initing && !srv.state.IsLoading {
		return
	}

	srv.initing = false
	srv.state = usecase.AuthStateSnapshot{
		User:            user,
		Session:         session,
		IsAuthenticated: user != nil,
		ResolvedAt:      timeNow(),
	}
}

func (srv *authStateService) consume(events <-chan service.AuthEvent) {
	for {
		select {
		case <-srv.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			srv.handle(event)
		}
	}
}

// handle applies one auth event. The underlying stream may deliver the same
// change more than once; identical events inside the dedup window collapse to
// a single state transition.
func (srv *authStateService) handle(event service.AuthEvent) {
	srv.mu.Lock()

	now := timeNow()
	if last, ok := srv.lastSeen[event.Type]; ok && now.Sub(last) < srv.dedupWindow {
		srv.mu.Unlock()
		srv.logger.Debug("Duplicate auth event ignored", slog.String("type", string(event.Type)))

		return
	}
	srv.lastSeen[event.Type] = now

	// While initial resolution is in flight it remains the single writer;
	// sign-in events arriving mid-init are superseded by SetSession from the
	// sign-in flow itself.
	if srv.initing && event.Type == service.AuthEventSignedIn {
		srv.mu.Unlock()
		srv.logger.Debug("Sign-in event during init deferred to init")

		return
	}

	switch event.Type {
	case service.AuthEventSignedOut:
		srv.state = usecase.AuthStateSnapshot{ResolvedAt: now}
		srv.mu.Unlock()

	case service.AuthEventSignedIn, service.AuthEventTokenRefreshed, service.AuthEventUserUpdated:
		session := srv.state.Session
		srv.mu.Unlock()
		srv.reverify(session)

	default:
		srv.mu.Unlock()
	}
}

// reverify re-checks the mirrored session against the store. A failed
// re-verification is logged and leaves the existing state untouched; only a
// definitive sign-out clears it.
func (srv *authStateService) reverify(session *entity.Session) {
	if session == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), srv.initTimeout)
	defer cancel()

	user, err := srv.auth.VerifyUser(ctx, session.AccessToken)
	if err != nil {
		srv.logger.Warn("Auth state re-verification failed, keeping current state", slog.Any("error", err))

		return
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state.User = user
	srv.state.IsAuthenticated = true
	srv.state.IsLoading = false
	srv.state.ResolvedAt = timeNow()
}

// SetSession installs a session for the tracker to mirror, as after a
// completed sign-in. It ends any in-flight initialization.
func (srv *authStateService) SetSession(ctx context.Context, session *entity.Session) {
	user, err := srv.auth.VerifyUser(ctx, session.AccessToken)
	if err != nil {
		srv.logger.Warn("Session rejected by verification", slog.Any("error", err))

		return
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.initing = false
	srv.state = usecase.AuthStateSnapshot{
		User:            user,
		Session:         session,
		IsAuthenticated: true,
		ResolvedAt:      timeNow(),
	}
}

// SignOut clears the mirrored state and invalidates the session.
func (srv *authStateService) SignOut(ctx context.Context) error {
	srv.mu.Lock()
	session := srv.state.Session
	srv.state = usecase.AuthStateSnapshot{ResolvedAt: timeNow()}
	srv.mu.Unlock()

	if session == nil {
		return nil
	}

	return srv.auth.SignOut(ctx, session.RefreshToken)
}

// Snapshot returns the current state.
func (srv *authStateService) Snapshot() usecase.AuthStateSnapshot {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return srv.state
}

// Stop tears down the event subscription. Safe to call more than once.
func (srv *authStateService) Stop() {
	srv.stopOnce.Do(func() {
		close(srv.done)

		srv.mu.Lock()
		cancel := srv.cancelSub
		srv.mu.Unlock()

		if cancel != nil {
			cancel()
		}
	})
}
