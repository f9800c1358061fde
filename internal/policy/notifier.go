package policy

// Preferences в каких переходах хост сам перезаявляет capability.
type Preferences struct {
	OnCreateDestroy    bool
	OnEnableDisable    bool
	OnConnectedStandby bool
}

// DefaultPreferences для модулей, не реализующих AutoNotifier.
var DefaultPreferences = Preferences{
	OnCreateDestroy:    true,
	OnEnableDisable:    true,
	OnConnectedStandby: false,
}

// AutoNotifier модуль сам решает, когда хосту вести переговоры.
type AutoNotifier interface {
	AutoNotify() Preferences
}

// PreferencesOf возвращает настройки модуля или значения по умолчанию.
func PreferencesOf(m Module) Preferences {
	if an, ok := m.(AutoNotifier); ok {
		return an.AutoNotify()
	}
	return DefaultPreferences
}
