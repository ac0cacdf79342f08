package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizroom/internal/app"
	"quizroom/internal/config"
	"quizroom/internal/domain"
	"quizroom/internal/infra/memory"
	pgloader "quizroom/internal/infra/postgres"
	redisinfra "quizroom/internal/infra/redis"
	sqliteloader "quizroom/internal/infra/sqlite"
	transport "quizroom/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	switch {
	case pool != nil:
		loader = pgloader.NewQuestionLoader(pool)
	case cfg.SQLite.Path != "":
		sq, err := sqliteloader.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer sq.Close()
		loader = sq
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		rooms = redisinfra.NewRoomStore(redisClient, redisTTL)
	} else {
		rooms = memory.NewRoomStore()
	}

	hub := transport.NewHub()
	service := app.NewGameService(rooms, questionRepo, hub)
	wsHandler := transport.NewWSHandler(service, hub)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizroom server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func floatPtr(v float64) *float64 { return &v }

// sampleQuestions provides a built-in bank covering every question type;
// swap in the Postgres or SQLite loader for a real bank.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:               "q-capital-fr",
			Type:             domain.MultipleChoice,
			Category:         "geography",
			Prompt:           "What is the capital of France?",
			CorrectAnswer:    "Paris",
			IncorrectAnswers: []string{"Lyon", "Marseille", "Toulouse"},
			Points:           100,
		},
		{
			ID:               "q-flag-jp",
			Type:             domain.ImageQuestion,
			Category:         "geography",
			Prompt:           "Which country does this flag belong to?",
			CorrectAnswer:    "Japan",
			IncorrectAnswers: []string{"China", "South Korea", "Vietnam"},
			Points:           100,
			MediaURL:         "/media/flags/jp.png",
		},
		{
			ID:               "q-anthem",
			Type:             domain.AudioQuestion,
			Category:         "music",
			Prompt:           "Which national anthem is playing?",
			CorrectAnswer:    "La Marseillaise",
			IncorrectAnswers: []string{"God Save the King", "Il Canto degli Italiani"},
			Points:           150,
			MediaURL:         "/media/audio/anthem-01.mp3",
		},
		{
			ID:            "q-eiffel-height",
			Type:          domain.NumericAnswer,
			Category:      "geography",
			Prompt:        "How tall is the Eiffel Tower, in meters?",
			CorrectAnswer: "330",
			RangeMin:      floatPtr(300),
			RangeMax:      floatPtr(360),
			Points:        200,
		},
		{
			ID:            "q-blank-moon",
			Type:          domain.FillInTheBlank,
			Category:      "science",
			Prompt:        "The first person to walk on the Moon was Neil ____.",
			CorrectAnswer: "Armstrong",
			Points:        100,
		},
		{
			ID:           "q-planet-order",
			Type:         domain.OrderedList,
			Category:     "science",
			Prompt:       "Order the first three planets from the Sun.",
			CorrectOrder: []string{"Mercury", "Venus", "Earth"},
			Aliases:      map[string][]string{"earth": {"terra"}},
			Points:       250,
		},
		{
			ID:               "q-odd-fruit",
			Type:             domain.PickOddOneOut,
			Category:         "general",
			Prompt:           "Pick the odd one out.",
			CorrectAnswer:    "Carrot",
			IncorrectAnswers: []string{"Apple", "Banana", "Cherry"},
			Points:           100,
		},
		{
			ID:       "q-survey-season",
			Type:     domain.NoSpecificAnswer,
			Category: "general",
			Prompt:   "What is your favorite season?",
			Points:   0,
		},
	}
}
