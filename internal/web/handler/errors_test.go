package handler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
)

func TestError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "not found",
			err:            fmt.Errorf("role %w: id 4", controller.ErrNotFound),
			expectedStatus: fiber.StatusNotFound,
			expectedBody:   `{"error":"role not found: id 4"}`,
		},
		{
			name:           "validation",
			err:            fmt.Errorf("%w: bad", controller.ErrValidation),
			expectedStatus: fiber.StatusUnprocessableEntity,
		},
		{
			name:           "conflict",
			err:            errors.Join(controller.ErrConflict, errors.New("duplicated key")),
			expectedStatus: fiber.StatusConflict,
		},
		{
			name:           "internal is hidden",
			err:            errors.New("dial tcp 10.0.0.5:3306: connection refused"),
			expectedStatus: fiber.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return Error(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", http.NoBody), -1)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.JSONEq(t, tc.expectedBody, string(body))
			}
		})
	}
}

func TestParamIDAndBind(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}

	v := validator.New()

	app := fiber.New()
	app.Post("/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return Error(c, err)
		}

		var in input
		if err = BindJSON(c, v, &in); err != nil {
			return Error(c, err)
		}

		return c.JSON(fiber.Map{"id": id, "name": in.Name})
	})

	testCases := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
	}{
		{name: "ok", path: "/3", body: `{"name":"x"}`, expectedStatus: fiber.StatusOK},
		{name: "zero id", path: "/0", body: `{"name":"x"}`, expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "text id", path: "/abc", body: `{"name":"x"}`, expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "missing field", path: "/3", body: `{}`, expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "broken json", path: "/3", body: `{`, expectedStatus: fiber.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, tc.path, strings.NewReader(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

func TestParamUint(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		id, err := ParamUint(c, "id")
		if err != nil {
			return Error(c, err)
		}

		return c.JSON(fiber.Map{"id": id})
	})

	testCases := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "ok", path: "/7", expectedStatus: fiber.StatusOK},
		{name: "max uint", path: "/" + strconv.FormatUint(uint64(math.MaxUint), 10), expectedStatus: fiber.StatusOK},
		{name: "above max uint", path: fmt.Sprintf("/%d0", uint64(math.MaxUint)), expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "zero id", path: "/0", expectedStatus: fiber.StatusUnprocessableEntity},
		{name: "negative id", path: "/-1", expectedStatus: fiber.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil), -1)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}
