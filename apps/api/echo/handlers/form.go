package handlers

import (
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/core/form"
)

var (
	errHTTPNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidPaging  = echo.NewHTTPError(http.StatusBadRequest, "skip and limit must be non-negative integers")
	errUnreadableFile = echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
)

type formApi struct {
	service *form.Service
}

// RegisterFormAPI mounts the submission endpoints of every registered form
// type under the given group, eg. /exit-forms, /exit-forms/:id.
func RegisterFormAPI(g *echo.Group, svc *form.Service) {
	api := formApi{service: svc}

	for _, t := range form.Types {
		t := t
		fg := g.Group("/" + t.Slug)
		fg.POST("", api.submissionCreate(t))
		fg.GET("", api.submissionQuery(t))
		fg.GET("/:id", api.submissionRetrieve(t))
		fg.DELETE("/:id", api.submissionDestroy(t))
		fg.DELETE("", api.submissionDestroyAll(t))
	}
}

// Handlers

func (api *formApi) submissionCreate(t form.Type) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data form.NewSubmission
		var err error

		contentType := ctx.Request().Header.Get(echo.HeaderContentType)
		if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
			data, err = bindMultipart(ctx, t)
		} else {
			data, err = bindJSON(ctx, t)
		}
		if err != nil {
			return err
		}
		if err = data.Validate(); err != nil {
			return err
		}

		sub, err := api.service.Create(ctx.Request().Context(), t, data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, sub)
	}
}

func (api *formApi) submissionQuery(t form.Type) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		skip, limit, err := pagination(ctx)
		if err != nil {
			return err
		}
		subs, err := api.service.Query(ctx.Request().Context(), t, skip, limit)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, subs)
	}
}

func (api *formApi) submissionRetrieve(t form.Type) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			return errHTTPNotFound
		}
		sub, err := api.service.GetByID(ctx.Request().Context(), t, id)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, sub)
	}
}

func (api *formApi) submissionDestroy(t form.Type) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			return errHTTPNotFound
		}
		if err = api.service.Delete(ctx.Request().Context(), t, id); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

func (api *formApi) submissionDestroyAll(t form.Type) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		count, err := api.service.DeleteAll(ctx.Request().Context(), t)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, echo.Map{"deleted": count})
	}
}

// Helpers

// bindJSON accepts an open payload: known keys are promoted, the rest lands
// in form_data untouched.
func bindJSON(ctx echo.Context, t form.Type) (form.NewSubmission, error) {
	payload := make(map[string]interface{})
	if err := ctx.Bind(&payload); err != nil {
		return form.NewSubmission{}, err
	}
	return form.NewSubmissionFromPayload(t, payload), nil
}

// bindMultipart reads the form values and file parts of an upload-capable
// form type. Declared boolean fields arrive as free-form text and are
// normalized; declared file fields become uploads.
func bindMultipart(ctx echo.Context, t form.Type) (form.NewSubmission, error) {
	mf, err := ctx.MultipartForm()
	if err != nil {
		return form.NewSubmission{}, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	payload := make(map[string]interface{}, len(mf.Value))
	for key, vals := range mf.Value {
		if len(vals) > 0 {
			payload[key] = vals[0]
		}
	}
	for _, fld := range t.BoolFields {
		var raw *string
		if v, ok := payload[fld].(string); ok {
			raw = &v
		}
		if b := form.ParseBool(raw); b != nil {
			payload[fld] = *b
		}
	}

	data := form.NewSubmissionFromPayload(t, payload)

	for _, fld := range t.FileFields {
		fhs, ok := mf.File[fld]
		if !ok || len(fhs) == 0 {
			continue
		}
		fh := fhs[0]
		f, err := fh.Open()
		if err != nil {
			return form.NewSubmission{}, errUnreadableFile
		}
		content, err := ioutil.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return form.NewSubmission{}, errUnreadableFile
		}
		data.Uploads = append(data.Uploads, form.Upload{Field: fld, Filename: fh.Filename, Content: content})
	}
	return data, nil
}

func pagination(ctx echo.Context) (skip, limit int, err error) {
	skip, limit = 0, core.Conf.API.DefaultPageLimit

	if raw := ctx.QueryParam("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			return 0, 0, errInvalidPaging
		}
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return 0, 0, errInvalidPaging
		}
	}
	if max := core.Conf.API.MaxPageLimit; limit > max {
		limit = max
	}
	return skip, limit, nil
}
