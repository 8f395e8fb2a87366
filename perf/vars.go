package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	AdvertiseLatency       = metric.NewHistogram("1m1s")
	AdvertisementsSent     = metric.NewCounter("10s1s")
	SendFailures           = metric.NewCounter("10s1s")
	AdvertisementsReceived = metric.NewCounter("10s1s")
	AdvertisementsIgnored  = metric.NewCounter("10s1s")
	AdvertisementsRejected = metric.NewCounter("10s1s")
	RouteChanges           = metric.NewCounter("10s1s")
)

func init() {
	expvar.Publish("dvrouter:AdvertiseLatency (µs)", AdvertiseLatency)
	expvar.Publish("dvrouter:Sent/s", AdvertisementsSent)
	expvar.Publish("dvrouter:SendFailures/s", SendFailures)
	expvar.Publish("dvrouter:Received/s", AdvertisementsReceived)
	expvar.Publish("dvrouter:Ignored/s", AdvertisementsIgnored)
	expvar.Publish("dvrouter:Rejected/s", AdvertisementsRejected)
	expvar.Publish("dvrouter:RouteChanges/s", RouteChanges)
}

// Handler serves every published metric
func Handler() http.Handler {
	return metric.Handler(metric.Exposed)
}
