/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"sync"

	"github.com/fabric-rest/assetgw/common/metrics"
	"github.com/fabric-rest/assetgw/common/metrics/prometheus"
)

var (
	assetgwVersion = metrics.GaugeOpts{
		Name:       "assetgw_version",
		Help:       "The active version of the asset gateway.",
		LabelNames: []string{"version"},
	}

	gaugeLock        sync.Mutex
	promVersionGauge metrics.Gauge
)

func versionGauge(provider metrics.Provider) metrics.Gauge {
	switch provider.(type) {
	case *prometheus.Provider:
		gaugeLock.Lock()
		defer gaugeLock.Unlock()
		if promVersionGauge == nil {
			promVersionGauge = provider.NewGauge(assetgwVersion)
		}
		return promVersionGauge

	default:
		return provider.NewGauge(assetgwVersion)
	}
}
