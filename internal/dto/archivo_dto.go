package dto

import "time"

type ArchivoResponse struct {
	Nombre       string    `json:"nombre"`
	Ruta         string    `json:"ruta"`
	Tamano       int64     `json:"tamano"`
	ModificadoEn time.Time `json:"modificado_en"`
}
