package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	polizasGuardadas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polizas_guardadas_total",
		Help: "Policies persisted, by operation (crear, actualizar).",
	}, []string{"operacion"})

	leadsPromovidos = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_promovidos_total",
		Help: "Leads promoted to clients.",
	})

	promocionesFallidas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promociones_fallidas_total",
		Help: "Leads persisted as won whose client could not be created.",
	})

	leadsImportados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leads_importados_total",
		Help: "Leads created through bulk import, by source format.",
	}, []string{"formato"})
)
