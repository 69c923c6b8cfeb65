package server

import (
	"context"
	"errors"
	"log/slog"

	"wellspring/app/config"
	"wellspring/app/service/coach"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Server)(nil)

// Server is the thin HTTP edge over the coach pipeline. Everything
// interesting happens below it.
type Server struct {
	cfg      *config.Config
	coachSvc *coach.Service
	app      *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:      do.MustInvoke[*config.Config](di),
		coachSvc: do.MustInvoke[*coach.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	s.app.Post("/api/chat", s.handleChat)
	s.app.Delete("/api/users/:id/memory", s.handleReset)

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	slog.Info("HTTP server listening", "addr", s.cfg.Server.Addr)

	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req coach.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"ok":      false,
			"error":   "bad_request",
			"message": "request body must be JSON",
		})
	}

	resp, err := s.coachSvc.Chat(c.Context(), req)
	if err != nil {
		if errors.Is(err, coach.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok":      false,
				"error":   "validation",
				"message": err.Error(),
			})
		}

		slog.Error("Chat pipeline failed", "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":      false,
			"error":   "internal",
			"message": "something went wrong, please try again",
		})
	}

	return c.JSON(resp)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	userID := c.Params("id")

	if err := s.coachSvc.Reset(userID); err != nil {
		if errors.Is(err, coach.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok":      false,
				"error":   "validation",
				"message": err.Error(),
			})
		}

		slog.Error("Memory reset failed", "user_id", userID, "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": "internal",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}
