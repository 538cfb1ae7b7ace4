package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) idGen(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) nowFn(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Users       persistence.UserRepository
	Sessions    persistence.AuthSessionRepository
	Signer      *application.TokenSigner
	IDGenerator func() string
	Now         func() time.Time
	SessionTTL  time.Duration
	Logger      *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies
// combined with the factory defaults. When no signer is supplied a
// deterministic one is built from the factory clock.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	now := f.nowFn(deps.Now)
	signer := deps.Signer
	if signer == nil {
		signer = application.NewTokenSigner([]byte("test-secret"), now)
	}
	return application.NewAuthService(
		deps.Users,
		deps.Sessions,
		signer,
		f.idGen(deps.IDGenerator),
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}

// BookServiceDeps captures dependencies for constructing a book service.
type BookServiceDeps struct {
	Books       persistence.BookRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBookService builds a book service using the supplied dependencies.
func (f *ServiceFactory) NewBookService(deps BookServiceDeps) *application.BookService {
	return application.NewBookService(
		deps.Books,
		f.idGen(deps.IDGenerator),
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// ReadingServiceDeps captures dependencies for constructing a reading service.
type ReadingServiceDeps struct {
	Sessions    persistence.ReadingSessionRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewReadingService builds a reading service using the supplied dependencies.
func (f *ServiceFactory) NewReadingService(deps ReadingServiceDeps) *application.ReadingService {
	return application.NewReadingService(
		deps.Sessions,
		f.idGen(deps.IDGenerator),
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// SettingsServiceDeps captures dependencies for constructing a settings service.
type SettingsServiceDeps struct {
	Settings    persistence.SettingsRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewSettingsService builds a settings service using the supplied dependencies.
func (f *ServiceFactory) NewSettingsService(deps SettingsServiceDeps) *application.SettingsService {
	return application.NewSettingsService(
		deps.Settings,
		f.idGen(deps.IDGenerator),
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// StatsServiceDeps captures dependencies for constructing a stats service.
type StatsServiceDeps struct {
	Sessions persistence.ReadingSessionRepository
	Books    persistence.BookRepository
	Settings *application.SettingsService
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewStatsService builds a stats service using the supplied dependencies.
func (f *ServiceFactory) NewStatsService(deps StatsServiceDeps) *application.StatsService {
	return application.NewStatsService(
		deps.Sessions,
		deps.Books,
		deps.Settings,
		f.nowFn(deps.Now),
		deps.Logger,
	)
}
