package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"gorm.io/gorm"

	"lipidgenesis/internal/config"
	"lipidgenesis/internal/db/mock"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/server"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

// restoreGlobals resets every swappable dependency when the test ends.
func restoreGlobals(t *testing.T) {
	t.Helper()
	originalLoadConfig := loadConfigFunc
	originalConfigureLogging := configureLoggingFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig
	originalImport := runImportFunc
	originalNow := nowFunc

	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		configureLoggingFunc = originalConfigureLogging
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
		runImportFunc = originalImport
		nowFunc = originalNow
	})
}

func useConfig(cfg config.Config) {
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	configureLoggingFunc = func(applog.Options) error { return nil }
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	restoreGlobals(t)

	useConfig(config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Session: config.SessionConfig{
			Lifetime:     time.Hour,
			CookieName:   "test",
			CookieSecure: true,
		},
	})

	var mockCalled bool
	newMockDatabaseFunc = func(ctx context.Context) (*gorm.DB, error) {
		mockCalled = true
		return mock.New(ctx)
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("configureDatabase should not be called when mock is enabled")
		return nil, nil
	}

	var got server.Config
	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		got = cfg
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background(), &rootOptions{}, io.Discard)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !mockCalled {
		t.Fatal("expected mock database to be used")
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
	if got.Session.CookieName != "test" || !got.Session.CookieSecure {
		t.Fatalf("expected session settings to be passed through, got %+v", got.Session)
	}
	if got.Catalog == nil || len(got.Catalog.OilNames()) != 4 {
		t.Fatal("expected the seeded mock catalog to reach the server")
	}
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	restoreGlobals(t)

	useConfig(config.Config{Server: config.ServerConfig{Addr: ":8080"}})
	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-serverStub.startNotify
		cancel()
	}()

	if code := run(ctx, &rootOptions{}, io.Discard); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !serverStub.stopCalled {
		t.Fatal("expected server stop on cancellation")
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	restoreGlobals(t)

	useConfig(config.Config{Server: config.ServerConfig{Addr: ":8080"}})
	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background(), &rootOptions{}, io.Discard)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunReturnsErrorWhenStopFails(t *testing.T) {
	restoreGlobals(t)

	useConfig(config.Config{Server: config.ServerConfig{Addr: ":8080"}})
	serverStub := newStubServer(http.ErrServerClosed, errors.New("deadline exceeded"), true)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}
	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}
	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGINT
	}()

	if code := run(context.Background(), &rootOptions{}, io.Discard); code != 1 {
		t.Fatalf("expected exit code 1 when shutdown fails, got %d", code)
	}
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	restoreGlobals(t)

	useConfig(config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{URL: "postgres://example", UseMock: false},
	})
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be used when URL is configured")
		return nil, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("db connection refused")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Fatal("server should not be built without a catalog")
		return nil, nil
	}

	code := run(context.Background(), &rootOptions{}, io.Discard)
	if code != 1 {
		t.Fatalf("expected exit code 1 on database configuration failure, got %d", code)
	}
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	restoreGlobals(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{Logging: config.LoggingConfig{Level: "invalid"}}, nil
	}
	configureLoggingFunc = func(opts applog.Options) error {
		if opts.Level == "invalid" {
			return errors.New("invalid level")
		}
		return nil
	}

	code := run(context.Background(), &rootOptions{}, io.Discard)
	if code != 1 {
		t.Fatalf("expected exit code 1 for invalid log level, got %d", code)
	}
}

func TestRunReturnsErrorWhenConfigFails(t *testing.T) {
	restoreGlobals(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{}, errors.New("session lifetime must be positive")
	}

	if code := run(context.Background(), &rootOptions{}, io.Discard); code != 1 {
		t.Fatalf("expected exit code 1 for config failure, got %d", code)
	}
}

func TestFlagsOverrideLoggingConfig(t *testing.T) {
	restoreGlobals(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{Logging: config.LoggingConfig{Level: "info", Format: "text"}}, nil
	}
	var got applog.Options
	configureLoggingFunc = func(opts applog.Options) error {
		got = opts
		return nil
	}

	opts := &rootOptions{logLevel: "debug", logFormat: "json"}
	cfg, err := opts.setup(io.Discard)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got.Level != "debug" || got.Format != "json" || got.Output != io.Discard {
		t.Fatalf("unexpected logging options %+v", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected config to reflect the flag, got %q", cfg.Logging.Level)
	}
}
