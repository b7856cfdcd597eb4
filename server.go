package qanda

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// DefaultHookTimeout bounds the hooks run after a creation when ServerConfig.HookTimeout is zero.
const DefaultHookTimeout = 10 * time.Second

type ServerConfig struct {
	Addr        string
	HookTimeout time.Duration
}

type Server struct {
	Logger          zerolog.Logger
	config          *ServerConfig
	store           Store
	router          *httprouter.Router
	handler         http.Handler
	done            chan struct{}
	idleConnsClosed chan struct{}
	questionHooks   []QuestionHook
	answerHooks     []AnswerHook
	hooksRunning    sync.WaitGroup
}

// A QuestionHook is called after a question has been created.
type QuestionHook func(ctx context.Context, question *Question) error

// An AnswerHook is called after an answer has been posted on a question.
type AnswerHook func(ctx context.Context, question *Question, answer *Answer) error

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store) *Server {
	s := &Server{
		config:          config,
		store:           store,
		router:          httprouter.New(),
		Logger:          logger,
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowed(r.Method, r.URL.Path).RespondError(w, r)
	})
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		zerolog.Ctx(r.Context()).Error().Interface("panic", v).Msg("Recovered from panic")
		writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	s.handler = chain(s.router, s.requestIDMiddleware(), s.accessLogMiddleware())

	return s
}

// AddQuestionHook registers a hook to run after each question creation.
func (s *Server) AddQuestionHook(hook QuestionHook) {
	s.questionHooks = append(s.questionHooks, hook)
}

// AddAnswerHook registers a hook to run after each answer creation.
func (s *Server) AddAnswerHook(hook AnswerHook) {
	s.answerHooks = append(s.answerHooks, hook)
}

// runHooks calls the hooks in the background, so the response never waits on them. They
// share a context which keeps the request values but is not cancelled with the request,
// and which expires after the hook timeout.
func (s *Server) runHooks(r *http.Request, logger zerolog.Logger, hooks []func(ctx context.Context) error) {
	if len(hooks) == 0 {
		return
	}

	timeout := s.config.HookTimeout
	if timeout <= 0 {
		timeout = DefaultHookTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)

	s.hooksRunning.Add(1)
	go func() {
		defer s.hooksRunning.Done()
		defer cancel()

		for _, hook := range hooks {
			if err := hook(ctx); err != nil {
				logger.Warn().Err(err).Msg("hook failed")
			}
		}
	}()
}

func (s *Server) Prepare() error {
	s.Logger.Debug().Msg("Connecting to database")
	err := s.store.Connect()
	if err != nil {
		return err
	}

	s.Logger.Debug().Msg("Preparing routes")
	s.router.GET("/test", s.HandleTest())

	withMiddlewares(func(m middleware) {
		s.router.GET("/questions", m(s.HandleListQuestions()))
		s.router.POST("/questions", m(s.HandleCreateQuestion()))
		s.router.GET("/questions/:id", m(s.HandleShowQuestion()))
		s.router.PUT("/questions/:id", m(s.HandleUpdateQuestion()))
		s.router.DELETE("/questions/:id", m(s.HandleDeleteQuestion()))
		s.router.GET("/questions/:id/answers", m(s.HandleListAnswers()))
		s.router.POST("/questions/:id/answers", m(s.HandleCreateAnswer()))
		s.router.POST("/questions/:id/upvote", m(s.HandleVoteQuestion(Upvote)))
		s.router.POST("/questions/:id/downvote", m(s.HandleVoteQuestion(Downvote)))
	}, jsonBodyMiddleware())

	withMiddlewares(func(m middleware) {
		s.router.POST("/answers/:id/upvote", m(s.HandleVoteAnswer(Upvote)))
		s.router.POST("/answers/:id/downvote", m(s.HandleVoteAnswer(Downvote)))
	}, jsonBodyMiddleware())

	return nil
}

func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		s.Logger.Info().Str("addr", s.config.Addr).Msg("Listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.hooksRunning.Wait()
	close(s.idleConnsClosed)

	return nil
}

func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(res, req)
}
