package handler

import (
	"errors"
	"net/http"
	"reflect"

	"crmseguros/internal/apierror"
	"crmseguros/internal/middleware"
	"crmseguros/internal/pipeline"
	"crmseguros/internal/poliza"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parámetros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramID parses a UUID path parameter, writing 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and domain errors to HTTP responses. Anything not
// recognised is handed to the ErrorHandler middleware, which logs it and answers
// 500 without details.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, poliza.ErrSinProductos):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(poliza.ErrSinProductos.Error()))
	case errors.Is(err, poliza.ErrSinCliente):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(poliza.ErrSinCliente.Error()))
	case errors.Is(err, service.ErrEntradaInvalida):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSinPermiso):
		c.JSON(http.StatusForbidden, apierror.New(service.ErrSinPermiso.Error()))
	case errors.Is(err, service.ErrGuardadoEnCurso):
		c.JSON(http.StatusConflict, apierror.New(service.ErrGuardadoEnCurso.Error()))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.New(service.ErrCredenciales.Error()))
	case errors.Is(err, pipeline.ErrPromocion):
		c.JSON(http.StatusBadGateway, apierror.New(pipeline.ErrPromocion.Error()))
	case errors.Is(err, service.ErrServicioExterno):
		logFallo(c, err)
		c.JSON(http.StatusServiceUnavailable, apierror.New(service.ErrServicioExterno.Error()))
	case errors.Is(err, pipeline.ErrGuardado):
		logFallo(c, err)
		c.JSON(http.StatusInternalServerError, apierror.New(pipeline.ErrGuardado.Error()))
	default:
		_ = c.Error(err)
	}
}

func logFallo(c *gin.Context, err error) {
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("request failed")
}
