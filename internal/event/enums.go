package event

// Словари значений перечислений. Индекс в срезе равен значению на проводе.
var (
	onOffValues                     = []string{"Off", "On"}
	radioConnectionStatusValues     = []string{"NotConnected", "Connected"}
	socWorkloadClassificationValues = []string{"Idle", "SemiActive", "Bursty", "Sustained", "BatteryLife"}
	coolingModeValues               = []string{"Active", "Passive"}
	sensorOrientationValues         = []string{"Landscape", "Portrait", "LandscapeFlipped", "PortraitFlipped", "Flat", "FlatInverted"}
	sensorSpatialOrientationValues  = []string{"Flat", "NotFlat"}
	sensorUserPresenceValues        = []string{"NotPresent", "Present", "Engaged", "Disengaged"}
	osPowerSourceValues             = []string{"AC", "DC", "ShortTermDC"}
	osLidStateValues                = []string{"Closed", "Open"}
	osPowerSchemePersonalityValues  = []string{"HighPerformance", "PowerSaver", "Balanced"}
	osPlatformTypeValues            = []string{"Clamshell", "Convertible", "Detachable", "Tablet"}
	osDockModeValues                = []string{"Undocked", "Docked"}
	osUserPresenceValues            = []string{"Present", "NotPresent", "Inactive"}
	osSessionStateValues            = []string{"Unlocked", "Locked"}
	osPowerSliderValues             = []string{"BatterySaver", "BetterBattery", "BetterPerformance", "BestPerformance"}
	mobileNotificationTypeValues    = []string{"EmergencyCallMode", "ScreenState", "BatteryPercentage", "DockMode"}
)

// ValueName возвращает имя значения перечисления для вида или "" если значение вне словаря.
func ValueName(k Kind, v uint32) string {
	d, ok := Describe(k)
	if !ok {
		return ""
	}
	return lookup(d.Values, v)
}

func lookup(values []string, v uint32) string {
	if int(v) >= len(values) {
		return ""
	}
	return values[v]
}
