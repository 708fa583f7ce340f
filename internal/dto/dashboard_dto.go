package dto

type DashboardQuery struct {
	Mes  int `form:"mes"  validate:"omitempty,min=1,max=12"`
	Anio int `form:"anio" validate:"omitempty,min=2000,max=2100"`
}
