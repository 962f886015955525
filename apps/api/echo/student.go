package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/services/metrics"
	"github.com/trezcool/darasa/services/spreadsheet"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	importFileField  = "file"
	exportFilename   = "students.xlsx"
	templateFilename = "students_import_template.xlsx"
)

var errImportFormat = core.NewValidationMessage("Invalid data format: expected a non-empty array of students")

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/search", api.search)
	sg.GET("/export", api.export)
	sg.POST("/import", api.importRows)
	sg.GET("/import/template", api.template)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) search(ctx echo.Context) error {
	students, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("query"))
	if err != nil {
		return errors.Wrap(err, "searching students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id", student.ErrNotFound)
	if err != nil {
		return err
	}
	s, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id", student.ErrNotFound)
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id", student.ErrNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Student deleted successfully"})
}

// importRows accepts either a JSON array of rows or a multipart upload of an .xlsx file.
// It answers 207 when some rows were rejected.
func (api *studentApi) importRows(ctx echo.Context) error {
	var rows []student.NewStudent
	var err error
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		rows, err = readImportFile(ctx)
	} else {
		rows, err = readImportJSON(ctx)
	}
	if err != nil {
		return err
	}

	res, err := api.svc.Import(ctx.Request().Context(), rows)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	metrics.ObserveImport(res.Imported, res.Errors)

	code := http.StatusOK
	if res.Errors > 0 {
		code = http.StatusMultiStatus
	}
	return ctx.JSON(code, res)
}

func readImportJSON(ctx echo.Context) ([]student.NewStudent, error) {
	var rows []student.NewStudent
	if err := json.NewDecoder(ctx.Request().Body).Decode(&rows); err != nil {
		return nil, errImportFormat
	}
	return rows, nil
}

func readImportFile(ctx echo.Context) ([]student.NewStudent, error) {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: importFileField, Error: "an .xlsx file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening upload")
	}
	defer f.Close()
	return spreadsheet.ParseStudents(f)
}

func (api *studentApi) export(ctx echo.Context) error {
	students, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	var buf bytes.Buffer
	if err := spreadsheet.ExportStudents(&buf, students); err != nil {
		return errors.Wrap(err, "exporting students")
	}
	return attachment(ctx, exportFilename, buf.Bytes())
}

func (api *studentApi) template(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf); err != nil {
		return errors.Wrap(err, "writing import template")
	}
	return attachment(ctx, templateFilename, buf.Bytes())
}

func attachment(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, data)
}
