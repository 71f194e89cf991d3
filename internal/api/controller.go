package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ytmp3/internal/convert"
	"ytmp3/internal/deps"
	"ytmp3/internal/logging"
	"ytmp3/internal/services"
)

type apiController struct {
	svc     Service
	policy  urlPolicy
	logger  *slog.Logger
	version string
	deps    func() []deps.Status
}

func (controller *apiController) SetRoutes(eg *echo.Group) {
	eg.POST("/info", controller.info)
	eg.POST("/convert", controller.convert)
	eg.GET("/download/:id", controller.download)
	eg.GET("/health", controller.health)
}

func (controller *apiController) info(ec echo.Context) error {
	var req InfoRequest
	if err := ec.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := ec.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidURL)
	}
	url, _ := controller.policy.Normalize(req.URL)

	info, err := controller.svc.Info(ec.Request().Context(), url)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgInfoFailed).SetInternal(err)
	}

	return ec.JSON(http.StatusOK, InfoResponse{
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Uploader:  info.Uploader,
		ID:        info.ID,
	})
}

func (controller *apiController) convert(ec echo.Context) error {
	var req ConvertRequest
	if err := ec.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if err := ec.Validate(&req); err != nil {
		if failedTag(err) == "required" {
			return echo.NewHTTPError(http.StatusBadRequest, msgURLRequired)
		}
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidURL)
	}
	url, _ := controller.policy.Normalize(req.URL)

	result, err := controller.svc.Convert(ec.Request().Context(), url, req.Quality)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
			Error:   msgConvertFailed,
			Details: conversionDetail(err),
		}).SetInternal(err)
	}

	return ec.JSON(http.StatusOK, ConvertResponse{
		Success:     true,
		DownloadURL: "/api/download/" + result.ID,
		FileSize:    result.FileSize(),
		Quality:     result.Quality.String(),
	})
}

func (controller *apiController) download(ec echo.Context) error {
	ctx := ec.Request().Context()
	dl, err := controller.svc.OpenDownload(ctx, ec.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgFileNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, msgDownloadFailed).SetInternal(err)
	}
	// The file is removed on every exit path, including client aborts.
	defer dl.Close()

	header := ec.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.Filename()))
	header.Set(echo.HeaderContentLength, strconv.FormatInt(dl.Size, 10))
	if err := ec.Stream(http.StatusOK, "audio/mpeg", dl); err != nil {
		logging.WithContext(ctx, controller.logger).Debug("download stream interrupted",
			logging.String(logging.FieldFileID, dl.ID),
			logging.Error(err),
		)
	}
	return nil
}

func (controller *apiController) health(ec echo.Context) error {
	resp := HealthResponse{
		Status:       "ok",
		Version:      controller.version,
		Dependencies: []DependencyStatus{},
	}
	if controller.deps != nil {
		for _, dep := range controller.deps() {
			resp.Dependencies = append(resp.Dependencies, DependencyStatus{
				Name:      dep.Name,
				Command:   dep.Command,
				Optional:  dep.Optional,
				Available: dep.Available,
				Detail:    dep.Detail,
			})
			if !dep.Available && !dep.Optional {
				resp.Status = "degraded"
			}
		}
	}
	return ec.JSON(http.StatusOK, resp)
}

// conversionDetail is the human-readable reason sent with a failed conversion.
func conversionDetail(err error) string {
	switch {
	case errors.Is(err, convert.ErrFileNotCreated):
		return "File not created"
	case errors.Is(err, services.ErrTimeout):
		return "Conversion timed out"
	case errors.Is(err, services.ErrConfiguration):
		return "Converter is not configured on this server"
	}
	return err.Error()
}
