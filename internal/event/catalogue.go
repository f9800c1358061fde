package event

import (
	"fmt"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

// CatalogueVersion — версия закрытого каталога уведомлений.
// Минорная версия растёт при добавлении видов в конец, мажорная — при любом переупорядочивании.
const CatalogueVersion = "1.4.0"

// Kind — вид уведомления платформы. Значения плотные, поэтому подходят для битового набора.
type Kind uint16

const (
	KindBindParticipant Kind = iota
	KindUnbindParticipant
	KindBindDomain
	KindUnbindDomain

	// Системные события
	KindConnectedStandbyEntry
	KindConnectedStandbyExit
	KindSuspend
	KindResume

	// События участников и доменов
	KindDomainCoreControlCapabilityChanged
	KindDomainDisplayControlCapabilityChanged
	KindDomainDisplayStatusChanged
	KindDomainPerformanceControlCapabilityChanged
	KindDomainPerformanceControlsChanged
	KindDomainPowerControlCapabilityChanged
	KindDomainPriorityChanged
	KindDomainRadioConnectionStatusChanged
	KindDomainRfProfileChanged
	KindDomainTemperatureThresholdCrossed
	KindParticipantSpecificInfoChanged
	KindDomainVirtualSensorCalibrationTableChanged
	KindDomainVirtualSensorPollingTableChanged
	KindDomainVirtualSensorRecalcChanged
	KindDomainBatteryStatusChanged
	KindDomainBatteryInformationChanged
	KindDomainBatteryHighFrequencyImpedanceChanged
	KindDomainBatteryNoLoadVoltageChanged
	KindDomainMaxBatteryPeakCurrentChanged
	KindDomainPlatformPowerSourceChanged
	KindDomainAdapterPowerRatingChanged
	KindDomainChargerTypeChanged
	KindDomainPlatformRestOfPowerChanged
	KindDomainMaxBatteryPowerChanged
	KindDomainPlatformBatterySteadyStateChanged
	KindDomainACNominalVoltageChanged
	KindDomainACOperationalCurrentChanged
	KindDomainAC1msPercentageOverloadChanged
	KindDomainAC2msPercentageOverloadChanged
	KindDomainAC10msPercentageOverloadChanged
	KindDomainEnergyThresholdCrossed
	KindDomainFanCapabilityChanged
	KindDomainSocWorkloadClassificationChanged

	// Таблицы и состояние ОС
	KindPolicyActiveRelationshipTableChanged
	KindPolicyCoolingModePolicyChanged
	KindPolicyForegroundApplicationChanged
	KindPolicyInitiatedCallback
	KindPolicyPassiveTableChanged
	KindPolicySensorOrientationChanged
	KindPolicySensorMotionChanged
	KindPolicySensorSpatialOrientationChanged
	KindPolicyThermalRelationshipTableChanged
	KindPolicyAdaptivePerformanceParticipantConditionTableChanged
	KindPolicyAdaptivePerformanceConditionsTableChanged
	KindPolicyAdaptivePerformanceActionsTableChanged
	KindPolicyAdaptiveUserPresenceTableChanged
	KindPolicyOperatingSystemPowerSourceChanged
	KindPolicyOperatingSystemLidStateChanged
	KindPolicyOperatingSystemBatteryPercentageChanged
	KindPolicyOperatingSystemPowerSchemePersonalityChanged
	KindPolicyOperatingSystemPlatformTypeChanged
	KindPolicyOperatingSystemDockModeChanged
	KindPolicyOperatingSystemEmergencyCallModeStateChanged
	KindPolicyOperatingSystemMobileNotification
	KindPolicyOperatingSystemMixedRealityModeChanged
	KindPolicyOperatingSystemUserPresenceChanged
	KindPolicyOperatingSystemSessionStateChanged
	KindPolicyOperatingSystemScreenStateChanged
	KindPolicyOperatingSystemBatteryCountChanged
	KindPolicyOperatingSystemPowerSliderChanged
	KindPolicyOperatingSystemGameModeChanged
	KindPolicyOemVariablesChanged
	KindPolicyPowerBossConditionsTableChanged
	KindPolicyPowerBossActionsTableChanged
	KindPolicyPowerBossMathTableChanged
	KindPolicyVoltageThresholdMathTableChanged
	KindPolicyActivityLoggingEnabled
	KindPolicyActivityLoggingDisabled
	KindPolicyEmergencyCallModeTableChanged
	KindPolicyPidAlgorithmTableChanged
	KindPolicyActiveControlPointRelationshipTableChanged
	KindPolicyPowerShareAlgorithmTableChanged
	KindPolicyPowerShareAlgorithmTable2Changed
	KindPolicyWorkloadHintConfigurationChanged
	KindPowerLimitChanged
	KindPerformanceCapabilitiesChanged

	// Присутствие пользователя
	KindPolicySensorUserPresenceChanged
	KindPolicyPlatformUserPresenceChanged
	KindPolicyWakeOnApproachFeatureStateChanged
	KindPolicyWakeOnApproachWithExternalMonitorFeatureStateChanged
	KindPolicyWakeOnApproachOnLowBatteryFeatureStateChanged
	KindPolicyWakeOnApproachBatteryRemainingPercentageChanged
	KindPolicyWalkAwayLockFeatureStateChanged
	KindPolicyWalkAwayLockWithExternalMonitorFeatureStateChanged
	KindPolicyWalkAwayLockDimScreenFeatureStateChanged
	KindPolicyWalkAwayLockDisplayOffAfterLockFeatureStateChanged
	KindPolicyWalkAwayLockHonorPowerRequestsForDisplayFeatureStateChanged
	KindPolicyWalkAwayLockHonorUserInCallFeatureStateChanged
	KindPolicyUserInCallStateChanged
	KindPolicyWalkAwayLockScreenLockWaitTimeChanged
	KindPolicyWalkAwayLockPreDimWaitTimeChanged
	KindPolicyWalkAwayLockUserPresentWaitTimeChanged
	KindPolicyWalkAwayLockDimIntervalChanged
	KindPolicyAdaptiveDimmingFeatureStateChanged
	KindPolicyAdaptiveDimmingWithExternalMonitorFeatureStateChanged
	KindPolicyAdaptiveDimmingWithPresentationModeFeatureStateChanged
	KindPolicyAdaptiveDimmingPreDimWaitTimeChanged
	KindPolicyMispredictionFaceDetectionFeatureStateChanged
	KindPolicyMispredictionTimeWindowChanged
	KindPolicyMisprediction1DimWaitTimeChanged
	KindPolicyMisprediction2DimWaitTimeChanged
	KindPolicyMisprediction3DimWaitTimeChanged
	KindPolicyMisprediction4DimWaitTimeChanged
	KindPolicyNoLockOnPresenceFeatureStateChanged
	KindPolicyNoLockOnPresenceExternalMonitorFeatureStateChanged
	KindPolicyNoLockOnPresenceOnBatteryFeatureStateChanged
	KindPolicyNoLockOnPresenceBatteryRemainingPercentageChanged
	KindPolicyNoLockOnPresenceResetWaitTimeChanged
	KindPolicyFailsafeTimeoutChanged
	KindPolicyUserPresenceAppStateChanged
	KindPolicyExternalMonitorStateChanged
	KindPolicyUserNotPresentDimTargetChanged
	KindPolicyUserDisengagedDimmingIntervalChanged
	KindPolicyUserDisengagedDimTargetChanged
	KindPolicyUserDisengagedDimWaitTimeChanged

	kindCount
)

// Shape — форма полезной нагрузки, которую допускает вид.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeParticipant
	ShapeParticipantDomain
	ShapeParticipantValue
	ShapeDomainValue
	ShapeEnum
	ShapeCount
	ShapeText
	ShapeToggle
	ShapeDuration
	ShapePercentage
	ShapeCallback
	ShapeMobile
)

var shapeNames = [...]string{
	"none", "participant", "participant_domain", "participant_value", "domain_value",
	"enum", "count", "text", "toggle", "duration", "percentage", "callback", "mobile",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// Descriptor описывает вид: имя, форму, сообщение для лога и словарь значений.
type Descriptor struct {
	Kind    Kind
	Name    string
	Shape   Shape
	Message string
	// Values — имена значений перечисления (для ShapeEnum, ShapeParticipantValue, ShapeDomainValue).
	Values []string
	// Reconciles — после обработки нужно перепроверить заявленные capability.
	Reconciles bool
}

var catalogue = []Descriptor{
	{KindBindParticipant, "BindParticipant", ShapeParticipant, "Binding participant", nil, false},
	{KindUnbindParticipant, "UnbindParticipant", ShapeParticipant, "Unbinding participant", nil, false},
	{KindBindDomain, "BindDomain", ShapeParticipantDomain, "Binding domain for participant", nil, false},
	{KindUnbindDomain, "UnbindDomain", ShapeParticipantDomain, "Unbinding domain for participant", nil, false},
	{KindConnectedStandbyEntry, "ConnectedStandbyEntry", ShapeNone, "Connected standby entry event received", nil, false},
	{KindConnectedStandbyExit, "ConnectedStandbyExit", ShapeNone, "Connected standby exit event received", nil, false},
	{KindSuspend, "Suspend", ShapeNone, "Policy suspend event received", nil, false},
	{KindResume, "Resume", ShapeNone, "Policy resume event received", nil, false},
	{KindDomainCoreControlCapabilityChanged, "DomainCoreControlCapabilityChanged", ShapeParticipant, "Core control capabilities changed for participant", nil, false},
	{KindDomainDisplayControlCapabilityChanged, "DomainDisplayControlCapabilityChanged", ShapeParticipant, "Display control capabilities changed for participant", nil, false},
	{KindDomainDisplayStatusChanged, "DomainDisplayStatusChanged", ShapeParticipant, "Display status changed for participant", nil, false},
	{KindDomainPerformanceControlCapabilityChanged, "DomainPerformanceControlCapabilityChanged", ShapeParticipant, "Performance control capabilities changed for participant", nil, false},
	{KindDomainPerformanceControlsChanged, "DomainPerformanceControlsChanged", ShapeParticipant, "Performance control set changed for participant", nil, false},
	{KindDomainPowerControlCapabilityChanged, "DomainPowerControlCapabilityChanged", ShapeParticipant, "Power control capabilities changed for participant", nil, false},
	{KindDomainPriorityChanged, "DomainPriorityChanged", ShapeParticipant, "Domain priority changed for participant", nil, false},
	{KindDomainRadioConnectionStatusChanged, "DomainRadioConnectionStatusChanged", ShapeParticipantValue, "Radio connection status changed", radioConnectionStatusValues, false},
	{KindDomainRfProfileChanged, "DomainRfProfileChanged", ShapeParticipant, "RF profile changed for participant", nil, false},
	{KindDomainTemperatureThresholdCrossed, "DomainTemperatureThresholdCrossed", ShapeParticipant, "Temperature threshold crossed for participant", nil, false},
	{KindParticipantSpecificInfoChanged, "ParticipantSpecificInfoChanged", ShapeParticipant, "Specific info changed for participant", nil, false},
	{KindDomainVirtualSensorCalibrationTableChanged, "DomainVirtualSensorCalibrationTableChanged", ShapeParticipant, "VSCT changed for participant", nil, false},
	{KindDomainVirtualSensorPollingTableChanged, "DomainVirtualSensorPollingTableChanged", ShapeParticipant, "VSPT changed for participant", nil, false},
	{KindDomainVirtualSensorRecalcChanged, "DomainVirtualSensorRecalcChanged", ShapeParticipant, "Virtual sensor recalculation requested for participant", nil, false},
	{KindDomainBatteryStatusChanged, "DomainBatteryStatusChanged", ShapeParticipant, "Battery status changed for participant", nil, false},
	{KindDomainBatteryInformationChanged, "DomainBatteryInformationChanged", ShapeParticipant, "Battery information changed for participant", nil, false},
	{KindDomainBatteryHighFrequencyImpedanceChanged, "DomainBatteryHighFrequencyImpedanceChanged", ShapeParticipant, "Battery high frequency impedance changed for participant", nil, false},
	{KindDomainBatteryNoLoadVoltageChanged, "DomainBatteryNoLoadVoltageChanged", ShapeParticipant, "Battery no-load voltage changed for participant", nil, false},
	{KindDomainMaxBatteryPeakCurrentChanged, "DomainMaxBatteryPeakCurrentChanged", ShapeParticipant, "Max battery peak current changed for participant", nil, false},
	{KindDomainPlatformPowerSourceChanged, "DomainPlatformPowerSourceChanged", ShapeParticipant, "Platform power source (PSRC) changed", nil, false},
	{KindDomainAdapterPowerRatingChanged, "DomainAdapterPowerRatingChanged", ShapeParticipant, "Adapter power rating (ARTG) changed", nil, false},
	{KindDomainChargerTypeChanged, "DomainChargerTypeChanged", ShapeParticipant, "Charger type (CTYP) changed", nil, false},
	{KindDomainPlatformRestOfPowerChanged, "DomainPlatformRestOfPowerChanged", ShapeParticipant, "Rest of platform power (PROP) changed", nil, false},
	{KindDomainMaxBatteryPowerChanged, "DomainMaxBatteryPowerChanged", ShapeParticipant, "Battery max peak power (PMAX) changed", nil, false},
	{KindDomainPlatformBatterySteadyStateChanged, "DomainPlatformBatterySteadyStateChanged", ShapeParticipant, "Battery sustained peak power (PBSS) changed", nil, false},
	{KindDomainACNominalVoltageChanged, "DomainACNominalVoltageChanged", ShapeParticipant, "AC nominal voltage (AVOL) changed", nil, false},
	{KindDomainACOperationalCurrentChanged, "DomainACOperationalCurrentChanged", ShapeParticipant, "AC operational current (ACUR) changed", nil, false},
	{KindDomainAC1msPercentageOverloadChanged, "DomainAC1msPercentageOverloadChanged", ShapeParticipant, "AC 1ms percentage overload (AP01) changed", nil, false},
	{KindDomainAC2msPercentageOverloadChanged, "DomainAC2msPercentageOverloadChanged", ShapeParticipant, "AC 2ms percentage overload (AP02) changed", nil, false},
	{KindDomainAC10msPercentageOverloadChanged, "DomainAC10msPercentageOverloadChanged", ShapeParticipant, "AC 10ms percentage overload (AP10) changed", nil, false},
	{KindDomainEnergyThresholdCrossed, "DomainEnergyThresholdCrossed", ShapeParticipant, "Energy threshold crossed for participant", nil, false},
	{KindDomainFanCapabilityChanged, "DomainFanCapabilityChanged", ShapeParticipant, "Fan capabilities changed for participant", nil, false},
	{KindDomainSocWorkloadClassificationChanged, "DomainSocWorkloadClassificationChanged", ShapeDomainValue, "Workload classification changed", socWorkloadClassificationValues, false},
	{KindPolicyActiveRelationshipTableChanged, "PolicyActiveRelationshipTableChanged", ShapeNone, "Active relationship table changed", nil, false},
	{KindPolicyCoolingModePolicyChanged, "PolicyCoolingModePolicyChanged", ShapeEnum, "Cooling mode changed", coolingModeValues, false},
	{KindPolicyForegroundApplicationChanged, "PolicyForegroundApplicationChanged", ShapeText, "Foreground application changed", nil, false},
	{KindPolicyInitiatedCallback, "PolicyInitiatedCallback", ShapeCallback, "Policy initiated callback", nil, false},
	{KindPolicyPassiveTableChanged, "PolicyPassiveTableChanged", ShapeNone, "Passive table changed", nil, false},
	{KindPolicySensorOrientationChanged, "PolicySensorOrientationChanged", ShapeEnum, "Sensor orientation changed", sensorOrientationValues, false},
	{KindPolicySensorMotionChanged, "PolicySensorMotionChanged", ShapeEnum, "Sensor motion state changed", onOffValues, false},
	{KindPolicySensorSpatialOrientationChanged, "PolicySensorSpatialOrientationChanged", ShapeEnum, "Sensor spatial orientation changed", sensorSpatialOrientationValues, false},
	{KindPolicyThermalRelationshipTableChanged, "PolicyThermalRelationshipTableChanged", ShapeNone, "Thermal relationship table changed", nil, false},
	{KindPolicyAdaptivePerformanceParticipantConditionTableChanged, "PolicyAdaptivePerformanceParticipantConditionTableChanged", ShapeNone, "Adaptive performance participant condition table changed", nil, false},
	{KindPolicyAdaptivePerformanceConditionsTableChanged, "PolicyAdaptivePerformanceConditionsTableChanged", ShapeNone, "Adaptive performance conditions table changed", nil, false},
	{KindPolicyAdaptivePerformanceActionsTableChanged, "PolicyAdaptivePerformanceActionsTableChanged", ShapeNone, "Adaptive performance actions table changed", nil, true},
	{KindPolicyAdaptiveUserPresenceTableChanged, "PolicyAdaptiveUserPresenceTableChanged", ShapeNone, "Adaptive user presence table changed", nil, false},
	{KindPolicyOperatingSystemPowerSourceChanged, "PolicyOperatingSystemPowerSourceChanged", ShapeEnum, "OS power source changed", osPowerSourceValues, false},
	{KindPolicyOperatingSystemLidStateChanged, "PolicyOperatingSystemLidStateChanged", ShapeEnum, "OS lid state changed", osLidStateValues, false},
	{KindPolicyOperatingSystemBatteryPercentageChanged, "PolicyOperatingSystemBatteryPercentageChanged", ShapeCount, "OS battery percentage changed", nil, false},
	{KindPolicyOperatingSystemPowerSchemePersonalityChanged, "PolicyOperatingSystemPowerSchemePersonalityChanged", ShapeEnum, "OS power scheme personality changed", osPowerSchemePersonalityValues, false},
	{KindPolicyOperatingSystemPlatformTypeChanged, "PolicyOperatingSystemPlatformTypeChanged", ShapeEnum, "OS platform type changed", osPlatformTypeValues, false},
	{KindPolicyOperatingSystemDockModeChanged, "PolicyOperatingSystemDockModeChanged", ShapeEnum, "OS dock mode changed", osDockModeValues, false},
	{KindPolicyOperatingSystemEmergencyCallModeStateChanged, "PolicyOperatingSystemEmergencyCallModeStateChanged", ShapeEnum, "OS emergency call mode state changed", onOffValues, false},
	{KindPolicyOperatingSystemMobileNotification, "PolicyOperatingSystemMobileNotification", ShapeMobile, "OS mobile notification received", nil, false},
	{KindPolicyOperatingSystemMixedRealityModeChanged, "PolicyOperatingSystemMixedRealityModeChanged", ShapeEnum, "OS mixed reality mode changed", onOffValues, false},
	{KindPolicyOperatingSystemUserPresenceChanged, "PolicyOperatingSystemUserPresenceChanged", ShapeEnum, "OS user presence changed", osUserPresenceValues, false},
	{KindPolicyOperatingSystemSessionStateChanged, "PolicyOperatingSystemSessionStateChanged", ShapeEnum, "OS session state changed", osSessionStateValues, false},
	{KindPolicyOperatingSystemScreenStateChanged, "PolicyOperatingSystemScreenStateChanged", ShapeEnum, "OS screen state changed", onOffValues, false},
	{KindPolicyOperatingSystemBatteryCountChanged, "PolicyOperatingSystemBatteryCountChanged", ShapeCount, "OS battery count changed", nil, false},
	{KindPolicyOperatingSystemPowerSliderChanged, "PolicyOperatingSystemPowerSliderChanged", ShapeEnum, "OS power slider changed", osPowerSliderValues, false},
	{KindPolicyOperatingSystemGameModeChanged, "PolicyOperatingSystemGameModeChanged", ShapeEnum, "OS game mode changed", onOffValues, false},
	{KindPolicyOemVariablesChanged, "PolicyOemVariablesChanged", ShapeNone, "OEM variable(s) changed", nil, false},
	{KindPolicyPowerBossConditionsTableChanged, "PolicyPowerBossConditionsTableChanged", ShapeNone, "Power boss conditions table changed", nil, false},
	{KindPolicyPowerBossActionsTableChanged, "PolicyPowerBossActionsTableChanged", ShapeNone, "Power boss actions table changed", nil, true},
	{KindPolicyPowerBossMathTableChanged, "PolicyPowerBossMathTableChanged", ShapeNone, "Power boss math table changed", nil, true},
	{KindPolicyVoltageThresholdMathTableChanged, "PolicyVoltageThresholdMathTableChanged", ShapeNone, "Voltage threshold math table changed", nil, true},
	{KindPolicyActivityLoggingEnabled, "PolicyActivityLoggingEnabled", ShapeNone, "Activity logging enabled", nil, false},
	{KindPolicyActivityLoggingDisabled, "PolicyActivityLoggingDisabled", ShapeNone, "Activity logging disabled", nil, false},
	{KindPolicyEmergencyCallModeTableChanged, "PolicyEmergencyCallModeTableChanged", ShapeNone, "Emergency call mode table changed", nil, false},
	{KindPolicyPidAlgorithmTableChanged, "PolicyPidAlgorithmTableChanged", ShapeNone, "PID algorithm table changed", nil, true},
	{KindPolicyActiveControlPointRelationshipTableChanged, "PolicyActiveControlPointRelationshipTableChanged", ShapeNone, "Active control point relationship table changed", nil, false},
	{KindPolicyPowerShareAlgorithmTableChanged, "PolicyPowerShareAlgorithmTableChanged", ShapeNone, "Power share algorithm table changed", nil, true},
	{KindPolicyPowerShareAlgorithmTable2Changed, "PolicyPowerShareAlgorithmTable2Changed", ShapeNone, "Power share algorithm table 2 changed", nil, true},
	{KindPolicyWorkloadHintConfigurationChanged, "PolicyWorkloadHintConfigurationChanged", ShapeNone, "Workload hint configuration changed", nil, false},
	{KindPowerLimitChanged, "PowerLimitChanged", ShapeNone, "Power limit changed", nil, false},
	{KindPerformanceCapabilitiesChanged, "PerformanceCapabilitiesChanged", ShapeParticipant, "Performance capabilities changed", nil, false},
	{KindPolicySensorUserPresenceChanged, "PolicySensorUserPresenceChanged", ShapeEnum, "Sensor user presence changed", sensorUserPresenceValues, false},
	{KindPolicyPlatformUserPresenceChanged, "PolicyPlatformUserPresenceChanged", ShapeEnum, "Platform user presence changed", sensorUserPresenceValues, false},
	{KindPolicyWakeOnApproachFeatureStateChanged, "PolicyWakeOnApproachFeatureStateChanged", ShapeToggle, "Wake on approach feature state changed", nil, false},
	{KindPolicyWakeOnApproachWithExternalMonitorFeatureStateChanged, "PolicyWakeOnApproachWithExternalMonitorFeatureStateChanged", ShapeToggle, "Wake on approach with external monitor feature state changed", nil, false},
	{KindPolicyWakeOnApproachOnLowBatteryFeatureStateChanged, "PolicyWakeOnApproachOnLowBatteryFeatureStateChanged", ShapeToggle, "Wake on approach on low battery feature state changed", nil, false},
	{KindPolicyWakeOnApproachBatteryRemainingPercentageChanged, "PolicyWakeOnApproachBatteryRemainingPercentageChanged", ShapePercentage, "Wake on approach battery remaining percentage changed", nil, false},
	{KindPolicyWalkAwayLockFeatureStateChanged, "PolicyWalkAwayLockFeatureStateChanged", ShapeToggle, "Walk away lock feature state changed", nil, false},
	{KindPolicyWalkAwayLockWithExternalMonitorFeatureStateChanged, "PolicyWalkAwayLockWithExternalMonitorFeatureStateChanged", ShapeToggle, "Walk away lock with external monitor feature state changed", nil, false},
	{KindPolicyWalkAwayLockDimScreenFeatureStateChanged, "PolicyWalkAwayLockDimScreenFeatureStateChanged", ShapeToggle, "Walk away lock dim screen feature state changed", nil, false},
	{KindPolicyWalkAwayLockDisplayOffAfterLockFeatureStateChanged, "PolicyWalkAwayLockDisplayOffAfterLockFeatureStateChanged", ShapeToggle, "Walk away lock display off after lock feature state changed", nil, false},
	{KindPolicyWalkAwayLockHonorPowerRequestsForDisplayFeatureStateChanged, "PolicyWalkAwayLockHonorPowerRequestsForDisplayFeatureStateChanged", ShapeToggle, "Walk away lock honor power requests for display feature state changed", nil, false},
	{KindPolicyWalkAwayLockHonorUserInCallFeatureStateChanged, "PolicyWalkAwayLockHonorUserInCallFeatureStateChanged", ShapeToggle, "Walk away lock honor user in call feature state changed", nil, false},
	{KindPolicyUserInCallStateChanged, "PolicyUserInCallStateChanged", ShapeToggle, "User in call state changed", nil, false},
	{KindPolicyWalkAwayLockScreenLockWaitTimeChanged, "PolicyWalkAwayLockScreenLockWaitTimeChanged", ShapeDuration, "Walk away lock screen lock wait time changed", nil, false},
	{KindPolicyWalkAwayLockPreDimWaitTimeChanged, "PolicyWalkAwayLockPreDimWaitTimeChanged", ShapeDuration, "Walk away lock pre dim wait time changed", nil, false},
	{KindPolicyWalkAwayLockUserPresentWaitTimeChanged, "PolicyWalkAwayLockUserPresentWaitTimeChanged", ShapeDuration, "Walk away lock HID interaction timeout changed", nil, false},
	{KindPolicyWalkAwayLockDimIntervalChanged, "PolicyWalkAwayLockDimIntervalChanged", ShapeDuration, "Walk away lock dim interval changed", nil, false},
	{KindPolicyAdaptiveDimmingFeatureStateChanged, "PolicyAdaptiveDimmingFeatureStateChanged", ShapeToggle, "Adaptive dimming feature state changed", nil, false},
	{KindPolicyAdaptiveDimmingWithExternalMonitorFeatureStateChanged, "PolicyAdaptiveDimmingWithExternalMonitorFeatureStateChanged", ShapeToggle, "Adaptive dimming with external monitor feature state changed", nil, false},
	{KindPolicyAdaptiveDimmingWithPresentationModeFeatureStateChanged, "PolicyAdaptiveDimmingWithPresentationModeFeatureStateChanged", ShapeToggle, "Adaptive dimming with presentation mode feature state changed", nil, false},
	{KindPolicyAdaptiveDimmingPreDimWaitTimeChanged, "PolicyAdaptiveDimmingPreDimWaitTimeChanged", ShapeDuration, "Adaptive dimming pre dim wait time changed", nil, false},
	{KindPolicyMispredictionFaceDetectionFeatureStateChanged, "PolicyMispredictionFaceDetectionFeatureStateChanged", ShapeToggle, "Misprediction face detection feature state changed", nil, false},
	{KindPolicyMispredictionTimeWindowChanged, "PolicyMispredictionTimeWindowChanged", ShapeDuration, "Misprediction time window changed", nil, false},
	{KindPolicyMisprediction1DimWaitTimeChanged, "PolicyMisprediction1DimWaitTimeChanged", ShapeDuration, "Misprediction 1 dim wait time changed", nil, false},
	{KindPolicyMisprediction2DimWaitTimeChanged, "PolicyMisprediction2DimWaitTimeChanged", ShapeDuration, "Misprediction 2 dim wait time changed", nil, false},
	{KindPolicyMisprediction3DimWaitTimeChanged, "PolicyMisprediction3DimWaitTimeChanged", ShapeDuration, "Misprediction 3 dim wait time changed", nil, false},
	{KindPolicyMisprediction4DimWaitTimeChanged, "PolicyMisprediction4DimWaitTimeChanged", ShapeDuration, "Misprediction 4 dim wait time changed", nil, false},
	{KindPolicyNoLockOnPresenceFeatureStateChanged, "PolicyNoLockOnPresenceFeatureStateChanged", ShapeToggle, "No lock on presence feature state changed", nil, false},
	{KindPolicyNoLockOnPresenceExternalMonitorFeatureStateChanged, "PolicyNoLockOnPresenceExternalMonitorFeatureStateChanged", ShapeToggle, "No lock on presence external monitor feature state changed", nil, false},
	{KindPolicyNoLockOnPresenceOnBatteryFeatureStateChanged, "PolicyNoLockOnPresenceOnBatteryFeatureStateChanged", ShapeToggle, "No lock on presence on battery feature state changed", nil, false},
	{KindPolicyNoLockOnPresenceBatteryRemainingPercentageChanged, "PolicyNoLockOnPresenceBatteryRemainingPercentageChanged", ShapePercentage, "No lock on presence battery remaining percentage changed", nil, false},
	{KindPolicyNoLockOnPresenceResetWaitTimeChanged, "PolicyNoLockOnPresenceResetWaitTimeChanged", ShapeDuration, "No lock on presence reset wait time changed", nil, false},
	{KindPolicyFailsafeTimeoutChanged, "PolicyFailsafeTimeoutChanged", ShapeDuration, "Failsafe timeout changed", nil, false},
	{KindPolicyUserPresenceAppStateChanged, "PolicyUserPresenceAppStateChanged", ShapeToggle, "User presence app state changed", nil, false},
	{KindPolicyExternalMonitorStateChanged, "PolicyExternalMonitorStateChanged", ShapeToggle, "External monitor state changed", nil, false},
	{KindPolicyUserNotPresentDimTargetChanged, "PolicyUserNotPresentDimTargetChanged", ShapePercentage, "User not present dim target changed", nil, false},
	{KindPolicyUserDisengagedDimmingIntervalChanged, "PolicyUserDisengagedDimmingIntervalChanged", ShapeDuration, "User disengaged dimming interval changed", nil, false},
	{KindPolicyUserDisengagedDimTargetChanged, "PolicyUserDisengagedDimTargetChanged", ShapePercentage, "User disengaged dim target changed", nil, false},
	{KindPolicyUserDisengagedDimWaitTimeChanged, "PolicyUserDisengagedDimWaitTimeChanged", ShapeDuration, "User disengaged dim wait time changed", nil, false},
}

var (
	byKind [kindCount]*Descriptor
	byName = make(map[string]Kind, kindCount)
)

func init() {
	for i := range catalogue {
		d := &catalogue[i]
		if byKind[d.Kind] != nil {
			panic(fmt.Sprintf("event: duplicate catalogue entry for %s", d.Name))
		}
		byKind[d.Kind] = d
		byName[d.Name] = d.Kind
	}
	for k, d := range byKind {
		if d == nil {
			panic(fmt.Sprintf("event: kind %d has no catalogue entry", k))
		}
	}
}

// Describe возвращает описание вида.
func Describe(k Kind) (Descriptor, bool) {
	if !k.Valid() {
		return Descriptor{}, false
	}
	return *byKind[k], true
}

// Valid — вид входит в каталог.
func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint16(k))
	}
	return byKind[k].Name
}

// Reconciles — вид влияет на заявленные capability (таблицы действий, алгоритмов и math).
func (k Kind) Reconciles() bool {
	return k.Valid() && byKind[k].Reconciles
}

// IsBinding — привязка/отвязка участника или домена. Такие события получают все политики.
func (k Kind) IsBinding() bool {
	switch k {
	case KindBindParticipant, KindUnbindParticipant, KindBindDomain, KindUnbindDomain:
		return true
	}
	return false
}

// ParseKind ищет вид по имени из каталога (используется конфигом и транспортом).
func ParseKind(name string) (Kind, error) {
	k, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds возвращает все виды каталога по порядку.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
