package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySymptomKeywords(t *testing.T) {
	tests := []struct {
		symptom string
		want    Classification
	}{
		{"Website is down", IssueUnreachable},
		{"Connection refused on port 443", IssueUnreachable},
		{"Requests timeout intermittently", IssueUnreachable},
		{"API latency spiked after deploy", IssueDegraded},
		{"Checkout is slow for EU users", IssueDegraded},
		{"Users see 502 from the load balancer", IssueFunctionalError},
		{"Uploads return 5xx responses", IssueFunctionalError},
		{"Something feels off", IssueUnknown},
		{"", IssueUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.symptom, func(t *testing.T) {
			p := ProblemStatement{Symptom: tt.symptom}
			assert.Equal(t, tt.want, p.Classify())
		})
	}
}

func TestHasPort(t *testing.T) {
	assert.False(t, ProblemStatement{}.HasPort())
	assert.False(t, ProblemStatement{Port: -1}.HasPort())
	assert.True(t, ProblemStatement{Port: 8080}.HasPort())
}

func TestLayerRankFollowsFunnel(t *testing.T) {
	for i, layer := range LayerOrder {
		assert.Equal(t, i, layer.Rank())
	}
	assert.Less(t, LayerAWS.Rank(), LayerNetwork.Rank())
	assert.Less(t, LayerNetwork.Rank(), LayerCompute.Rank())
	assert.Less(t, LayerCompute.Rank(), LayerApplication.Rank())
	assert.Less(t, LayerApplication.Rank(), LayerOS.Rank())
}

func TestStatusUsable(t *testing.T) {
	assert.True(t, StatusOK.Usable())
	assert.True(t, StatusAnomaly.Usable())
	assert.False(t, StatusFailedToRun.Usable())
	assert.False(t, StatusSkipped.Usable())
}

func TestEvidenceByLayerCoversAllLayers(t *testing.T) {
	result := RCAResult{
		Observations: []Observation{
			{CheckName: "instance-status", Layer: LayerAWS, Status: StatusOK},
			{CheckName: "security-groups", Layer: LayerNetwork, Status: StatusAnomaly},
			{CheckName: "route-tables", Layer: LayerNetwork, Status: StatusOK},
		},
	}

	grouped := result.EvidenceByLayer()
	assert.Len(t, grouped, len(LayerOrder))
	assert.Len(t, grouped[LayerAWS], 1)
	assert.Len(t, grouped[LayerNetwork], 2)
	// Plan order survives grouping.
	assert.Equal(t, "security-groups", grouped[LayerNetwork][0].CheckName)
	// Unobserved layers are present and empty, never nil lookups.
	assert.NotNil(t, grouped[LayerOS])
	assert.Empty(t, grouped[LayerOS])
}
