package dto

import "crmseguros/internal/model"

// Joined relations in legacy exports.
type (
	RelacionCliente  = model.Relacion[model.Cliente]
	RelacionProducto = model.Relacion[model.Producto]
)
