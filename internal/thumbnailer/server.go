package thumbnailer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/tile"
)

// Server serves a LocalBackend under the thumbnailer URL contract.
type Server struct {
	app     *fiber.App
	backend *LocalBackend
}

// NewServer builds the fiber app. Request logging is enabled when logRequests
// is set.
func NewServer(b *LocalBackend, logRequests bool) *Server {
	s := &Server{backend: b}
	s.app = fiber.New(fiber.Config{
		AppName:      "deepframe thumbnailer",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	})
	s.app.Use(recover.New())
	if logRequests {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/thumbnailer/photo/:size/:id", s.basePhoto)
	s.app.Get("/thumbnailer/tile/:id/:z/:x/:y.jpg", s.tile)
	return s
}

// App exposes the fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	klog.Infof("thumbnailer listening on %s", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) basePhoto(c fiber.Ctx) error {
	spec, err := ParseBaseSpec(c.Params("size"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	img, err := s.backend.Render(c.Context(), c.Params("id"), spec.Tier, spec.Fit)
	if err != nil {
		return s.fail(c, err)
	}
	return sendJPEG(c, img, spec.Quality)
}

func (s *Server) tile(c fiber.Ctx) error {
	var coord tile.Coord
	var err error
	for _, p := range []struct {
		name string
		dst  *int
	}{{"z", &coord.Z}, {"x", &coord.X}, {"y", &coord.Y}} {
		if *p.dst, err = strconv.Atoi(c.Params(p.name)); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad tile coordinate"})
		}
	}
	if coord.Z > tile.MaxLevel+3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "level too deep"})
	}
	if !coord.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tile outside its level"})
	}
	rotation, err := strconv.Atoi(c.Query("rotation", "0"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad rotation"})
	}
	quality, err := strconv.Atoi(c.Query("q", strconv.Itoa(DefaultQuality)))
	if err != nil || quality < 1 || quality > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad quality"})
	}
	img, err := s.backend.Tile(c.Context(), c.Params("id"), coord, rotation)
	if err != nil {
		return s.fail(c, err)
	}
	return sendJPEG(c, img, quality)
}

func (s *Server) fail(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrTileAbsent), errors.Is(err, photo.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	klog.Errorf("%s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func sendJPEG(c fiber.Ctx, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(quality)(&buf, img); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(buf.Bytes())
}
