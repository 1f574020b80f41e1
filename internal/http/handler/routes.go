package handler

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"assetcat/internal/model"
	"assetcat/internal/repository"
	"assetcat/internal/service"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	DB       *sql.DB
	Users    repository.UserRepository
	Assets   service.AssetService
	Deletion service.DeletionService
	Archive  service.ArchiveService
	Spheres  service.SphereService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay thin:
// they parse the request, resolve the acting user and translate service errors.
func RegisterRoutes(app *fiber.App, s Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Create asset (multipart/form-data; archive + screenshots files)
	app.Post("/assets", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form required")
		}

		req := service.CreateRequest{
			Title:        formValue(form, "title"),
			Description:  formValue(form, "description"),
			VersionLabel: formValue(form, "version"),
			SphereIDs:    form.Value["sphere_ids"],
			ProjectIDs:   form.Value["project_ids"],
		}
		if v := formValue(form, "author_id"); v != "" {
			req.AuthorID = &v
		}

		archives := form.File["archive"]
		if len(archives) == 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "archive file is required")
		}
		var closers []multipart.File
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()
		archive, f, err := openUpload(archives[0])
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		closers = append(closers, f)
		req.Archive = archive

		for _, fh := range form.File["screenshots"] {
			shot, f, err := openUpload(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			closers = append(closers, f)
			req.Screenshots = append(req.Screenshots, shot)
		}

		asset, err := s.Assets.Create(c.UserContext(), actor, req)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(asset)
	})

	// Partial update (multipart/form-data; absent fields stay untouched)
	app.Patch("/assets/:id", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form required")
		}

		req := service.UpdateRequest{
			Title:             formPtr(form, "title"),
			Description:       formPtr(form, "description"),
			AuthorID:          formPtr(form, "author_id"),
			VersionLabel:      formPtr(form, "version"),
			RemoveScreenshots: form.Value["remove_screenshots"],
		}
		// Slice fields distinguish absent (nil) from explicitly empty.
		if _, ok := form.Value["sphere_ids"]; ok {
			req.SphereIDs = nonEmpty(form.Value["sphere_ids"])
		}
		if _, ok := form.Value["project_ids"]; ok {
			req.ProjectIDs = nonEmpty(form.Value["project_ids"])
		}

		var closers []multipart.File
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()
		if archives := form.File["archive"]; len(archives) > 0 {
			archive, f, err := openUpload(archives[0])
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			closers = append(closers, f)
			req.Archive = &archive
		}
		for _, fh := range form.File["screenshots"] {
			shot, f, err := openUpload(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			closers = append(closers, f)
			req.AddScreenshots = append(req.AddScreenshots, shot)
		}

		res, err := s.Assets.Update(c.UserContext(), actor, c.Params("id"), req)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	})

	// History reads: version snapshots and audit entries for one asset
	app.Get("/assets/:id/versions", func(c *fiber.Ctx) error {
		versions, err := s.Assets.Versions(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": versions})
	})

	app.Get("/assets/:id/audit", func(c *fiber.Ctx) error {
		entries, err := s.Assets.AuditTrail(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": entries})
	})

	// Two-phase deletion workflow
	app.Post("/assets/:id/deletion-request", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		var body struct {
			Comment string `json:"comment"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := s.Deletion.Request(c.UserContext(), actor, c.Params("id"), body.Comment); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	app.Post("/assets/:id/deletion-decision", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		var body struct {
			Approve *bool `json:"approve"`
		}
		if err := c.BodyParser(&body); err != nil || body.Approve == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "approve is required")
		}
		if err := s.Deletion.Decide(c.UserContext(), actor, c.Params("id"), *body.Approve); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Archive of purged assets
	app.Get("/archive", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := s.Archive.List(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	})

	app.Delete("/archive/:id", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		if err := s.Archive.Purge(c.UserContext(), actor, []string{c.Params("id")}); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Post("/archive/purge", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := s.Archive.Purge(c.UserContext(), actor, body.IDs); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Spheres
	app.Get("/spheres", func(c *fiber.Ctx) error {
		spheres, err := s.Spheres.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": spheres})
	})

	app.Post("/spheres", func(c *fiber.Ctx) error {
		actor, resp := s.actor(c)
		if actor == nil {
			return resp
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sphere, err := s.Spheres.Create(c.UserContext(), actor, body.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sphere)
	})
}

// actor resolves the acting user from the X-User-ID header.
func (s Services) actor(c *fiber.Ctx) (*model.User, error) {
	id := c.Get("X-User-ID")
	if id == "" {
		return nil, writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "X-User-ID header is required")
	}
	u, err := s.Users.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, writeError(c, fiber.StatusUnauthorized, "UNKNOWN_USER", "unknown user")
		}
		return nil, writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return u, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formPtr(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// nonEmpty drops empty strings so clients can send an empty field to clear a list.
func nonEmpty(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func openUpload(fh *multipart.FileHeader) (service.FileUpload, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return service.FileUpload{}, nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return service.FileUpload{
		Name:        fh.Filename,
		Content:     f,
		Size:        fh.Size,
		ContentType: ct,
	}, f, nil
}
