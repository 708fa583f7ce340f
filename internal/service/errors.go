package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNoEncontrado    = errors.New("registro no encontrado")
	ErrSinPermiso      = errors.New("no tiene permisos sobre este registro")
	ErrGuardadoEnCurso = errors.New("ya hay un guardado en curso para este registro")
	ErrCredenciales    = errors.New("credenciales inválidas")
	ErrEntradaInvalida = errors.New("datos inválidos")
	ErrServicioExterno = errors.New("servicio externo no disponible")
)

// notFound maps gorm.ErrRecordNotFound to ErrNoEncontrado and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNoEncontrado)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func invalida(msg string) error {
	return fmt.Errorf("%w: %s", ErrEntradaInvalida, msg)
}
