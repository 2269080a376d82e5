package metrics

import (
	"subscription-retention-service/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		popupsShownTotal,
		offersAcceptedTotal,
		offersRejectedTotal,
		cancellationsTotal,
		winbackEmailsTotal,
	)
}

var (
	popupsShownTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_popups_shown_total",
			Help: "Total number of retention popups shown to canceling customers.",
		},
	)

	offersAcceptedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_offers_accepted_total",
			Help: "Total number of accepted retention offers by offer kind.",
		},
		[]string{"offer"},
	)

	offersRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_offers_rejected_total",
			Help: "Total number of offer applications rejected, by reason.",
		},
		[]string{"reason"}, // 'cooldown', 'already_used', 'backend', 'unknown'
	)

	cancellationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_cancellations_total",
			Help: "Total number of genuine subscription cancellations observed.",
		},
	)

	winbackEmailsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_winback_emails_total",
			Help: "Total number of win-back emails sent.",
		},
	)
)

func IncPopupShown()   { popupsShownTotal.Inc() }
func IncCancellation() { cancellationsTotal.Inc() }
func IncWinbackEmail() { winbackEmailsTotal.Inc() }

func IncOfferAccepted(offer model.OfferKind) {
	offersAcceptedTotal.WithLabelValues(string(offer)).Inc()
}

func IncOfferRejected(reason string) {
	offersRejectedTotal.WithLabelValues(reason).Inc()
}
