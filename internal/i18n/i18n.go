// Package i18n holds the static interface dictionaries served to the
// dashboard client. Selecting a language also decides the text direction:
// Arabic and Hebrew render right-to-left.
package i18n

// Direction is the text direction for a language.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// DefaultLanguage is used as the fallback for missing keys and unknown languages.
const DefaultLanguage = "en"

var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
}

// dictionaries maps language -> key -> translated string. The key set is the
// closed set of interface strings the dashboard uses; en is the reference.
var dictionaries = map[string]map[string]string{
	"en": {
		"nav.dashboard":        "Dashboard",
		"nav.accounting":       "Accounting",
		"nav.invoices":         "Invoices",
		"nav.budgets":          "Budgets",
		"nav.reports":          "Reports",
		"nav.settings":         "Settings",
		"auth.login":           "Log in",
		"auth.signup":          "Sign up",
		"auth.logout":          "Log out",
		"auth.reset_password":  "Reset password",
		"notifications.title":  "Notifications",
		"notifications.empty":  "No notifications",
		"notifications.clear":  "Clear all",
		"presence.online":      "Online now",
		"ai.assistant":         "AI Assistant",
		"ai.predictions":       "Predictions",
		"common.save":          "Save",
		"common.cancel":        "Cancel",
		"common.delete":        "Delete",
	},
	"es": {
		"nav.dashboard":        "Panel",
		"nav.accounting":       "Contabilidad",
		"nav.invoices":         "Facturas",
		"nav.budgets":          "Presupuestos",
		"nav.reports":          "Informes",
		"nav.settings":         "Ajustes",
		"auth.login":           "Iniciar sesión",
		"auth.signup":          "Registrarse",
		"auth.logout":          "Cerrar sesión",
		"auth.reset_password":  "Restablecer contraseña",
		"notifications.title":  "Notificaciones",
		"notifications.empty":  "Sin notificaciones",
		"notifications.clear":  "Borrar todo",
		"presence.online":      "En línea",
		"ai.assistant":         "Asistente IA",
		"ai.predictions":       "Predicciones",
		"common.save":          "Guardar",
		"common.cancel":        "Cancelar",
		"common.delete":        "Eliminar",
	},
	"fr": {
		"nav.dashboard":        "Tableau de bord",
		"nav.accounting":       "Comptabilité",
		"nav.invoices":         "Factures",
		"nav.budgets":          "Budgets",
		"nav.reports":          "Rapports",
		"nav.settings":         "Paramètres",
		"auth.login":           "Connexion",
		"auth.signup":          "Inscription",
		"auth.logout":          "Déconnexion",
		"auth.reset_password":  "Réinitialiser le mot de passe",
		"notifications.title":  "Notifications",
		"notifications.empty":  "Aucune notification",
		"notifications.clear":  "Tout effacer",
		"presence.online":      "En ligne",
		"ai.assistant":         "Assistant IA",
		"ai.predictions":       "Prévisions",
		"common.save":          "Enregistrer",
		"common.cancel":        "Annuler",
		"common.delete":        "Supprimer",
	},
	"ar": {
		"nav.dashboard":        "لوحة التحكم",
		"nav.accounting":       "المحاسبة",
		"nav.invoices":         "الفواتير",
		"nav.budgets":          "الميزانيات",
		"nav.reports":          "التقارير",
		"nav.settings":         "الإعدادات",
		"auth.login":           "تسجيل الدخول",
		"auth.signup":          "إنشاء حساب",
		"auth.logout":          "تسجيل الخروج",
		"auth.reset_password":  "إعادة تعيين كلمة المرور",
		"notifications.title":  "الإشعارات",
		"notifications.empty":  "لا توجد إشعارات",
		"notifications.clear":  "مسح الكل",
		"presence.online":      "متصل الآن",
		"ai.assistant":         "المساعد الذكي",
		"ai.predictions":       "التوقعات",
		"common.save":          "حفظ",
		"common.cancel":        "إلغاء",
		"common.delete":        "حذف",
	},
}

// Languages returns the supported language codes.
func Languages() []string {
	return []string{"en", "es", "fr", "ar"}
}

// Supported reports whether lang has a dictionary.
func Supported(lang string) bool {
	_, ok := dictionaries[lang]
	return ok
}

// DirectionFor returns the text direction for the given language.
func DirectionFor(lang string) Direction {
	if rtlLanguages[lang] {
		return RTL
	}
	return LTR
}

// Lookup returns the translation for key in lang, falling back to English
// when the language or the key is missing. Unknown keys come back as the
// key itself so missing strings are visible rather than blank.
func Lookup(lang, key string) string {
	if dict, ok := dictionaries[lang]; ok {
		if s, ok := dict[key]; ok {
			return s
		}
	}
	if s, ok := dictionaries[DefaultLanguage][key]; ok {
		return s
	}
	return key
}

// Dictionary returns the full key set for lang, with English filling any
// keys the language has not translated yet.
func Dictionary(lang string) map[string]string {
	out := make(map[string]string, len(dictionaries[DefaultLanguage]))
	for key, s := range dictionaries[DefaultLanguage] {
		out[key] = s
	}
	if lang == DefaultLanguage {
		return out
	}
	for key, s := range dictionaries[lang] {
		out[key] = s
	}
	return out
}
