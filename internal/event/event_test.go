package event

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

func TestCatalogueIsDenseAndNamed(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, int(kindCount))

	seen := make(map[string]bool)
	for i, k := range kinds {
		assert.Equal(t, Kind(i), k)
		d, ok := Describe(k)
		require.True(t, ok, "kind %d", k)
		assert.NotEmpty(t, d.Message, d.Name)
		assert.False(t, seen[d.Name], "duplicate name %s", d.Name)
		seen[d.Name] = true

		parsed, err := ParseKind(d.Name)
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := semver.NewVersion(CatalogueVersion)
	require.NoError(t, err)
}

func TestReconcilingKinds(t *testing.T) {
	want := []Kind{
		KindPolicyAdaptivePerformanceActionsTableChanged,
		KindPolicyPowerBossActionsTableChanged,
		KindPolicyPowerBossMathTableChanged,
		KindPolicyVoltageThresholdMathTableChanged,
		KindPolicyPidAlgorithmTableChanged,
		KindPolicyPowerShareAlgorithmTableChanged,
		KindPolicyPowerShareAlgorithmTable2Changed,
	}
	var got []Kind
	for _, k := range Kinds() {
		if k.Reconciles() {
			got = append(got, k)
		}
	}
	assert.ElementsMatch(t, want, got)
	assert.False(t, kindCount.Reconciles())
}

func TestParseKindUnknown(t *testing.T) {
	_, err := ParseKind("NoSuchNotification")
	require.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestNotificationValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		payload Payload
		wantErr error
	}{
		{"empty payload for table change", KindPolicyPassiveTableChanged, Empty{}, nil},
		{"nil payload for table change", KindPolicyPassiveTableChanged, nil, nil},
		{"participant", KindDomainTemperatureThresholdCrossed, Participant{Participant: 3}, nil},
		{"soc workload", KindDomainSocWorkloadClassificationChanged, DomainValue{Participant: 1, Domain: 0, Value: 3}, nil},
		{"wrong shape", KindDomainTemperatureThresholdCrossed, Enum{Value: 1}, domain.ErrPayloadMismatch},
		{"missing payload", KindPolicyOperatingSystemLidStateChanged, nil, domain.ErrPayloadMismatch},
		{"unknown kind", kindCount + 5, Empty{}, domain.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kind, tt.payload)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNotificationFieldsNameEnumValue(t *testing.T) {
	n := MustNew(KindPolicyOperatingSystemPowerSourceChanged, Enum{Value: 1})

	var names []string
	var valueName string
	for _, f := range n.Fields() {
		names = append(names, f.Key)
		if f.Key == "value_name" {
			valueName = f.String
		}
	}
	assert.Equal(t, []string{"kind", "value", "value_name"}, names)
	assert.Equal(t, "DC", valueName)
	assert.Equal(t, "OS power source changed", n.Message())
}

func TestPercentageWholeNumber(t *testing.T) {
	assert.Equal(t, uint(45), Percentage{Value: 0.45}.WholeNumber())
	assert.Equal(t, uint(0), Percentage{Value: -1}.WholeNumber())
	assert.Equal(t, []zap.Field{zap.Uint("percent", 100)}, Percentage{Value: 1}.Fields())
}

func TestSet(t *testing.T) {
	var s Set
	assert.Equal(t, 0, s.Len())

	s.Add(KindPolicyPassiveTableChanged)
	s.Add(KindPolicyUserDisengagedDimWaitTimeChanged)
	s.Add(KindPolicyPassiveTableChanged)
	s.Add(kindCount)

	assert.True(t, s.Has(KindPolicyPassiveTableChanged))
	assert.True(t, s.Has(KindPolicyUserDisengagedDimWaitTimeChanged))
	assert.False(t, s.Has(KindSuspend))
	assert.False(t, s.Has(kindCount))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Kind{KindPolicyPassiveTableChanged, KindPolicyUserDisengagedDimWaitTimeChanged}, s.Kinds())

	s.Remove(KindPolicyPassiveTableChanged)
	s.Remove(KindPolicyPassiveTableChanged)
	assert.False(t, s.Has(KindPolicyPassiveTableChanged))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Empty(t, s.Kinds())
}

func TestDecode(t *testing.T) {
	n, err := Decode([]byte(`{"kind":"PolicyWalkAwayLockPreDimWaitTimeChanged","duration_ms":1500}`))
	require.NoError(t, err)
	assert.Equal(t, KindPolicyWalkAwayLockPreDimWaitTimeChanged, n.Kind)
	assert.Equal(t, Duration{Value: 1500 * time.Millisecond}, n.Payload)

	n, err = Decode([]byte(`{"kind":"BindDomain","participant":2,"domain":1}`))
	require.NoError(t, err)
	assert.Equal(t, ParticipantDomain{Participant: 2, Domain: 1}, n.Payload)
	assert.True(t, n.Kind.IsBinding())

	_, err = Decode([]byte(`{"kind":"BindDomain","participant":2}`))
	assert.ErrorIs(t, err, domain.ErrPayloadMismatch)

	_, err = Decode([]byte(`{"kind":"Bogus"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
