package domain

// MaintenanceNotice es la página informativa estática que se sirve cuando el
// modo mantenimiento está activo.
type MaintenanceNotice struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	EstimatedTime string `json:"estimated_time"`
	ShowProgress  bool   `json:"show_progress"`
}

var maintenanceScenarios = map[string]MaintenanceNotice{
	"upgrade": {
		Title:         "Upgrading GimmyAI!",
		Message:       "We're adding some exciting new features to make your experience even better. This won't take long!",
		EstimatedTime: "Expected completion: within 2 hours",
		ShowProgress:  true,
	},
	"maintenance": {
		Title:         "Scheduled Maintenance",
		Message:       "We're performing routine maintenance to keep GimmyAI running smoothly.",
		EstimatedTime: "Expected completion: within 30 minutes",
		ShowProgress:  true,
	},
	"reconstruction": {
		Title:         "GimmyAI is Being Reconstructed!",
		Message:       "We're rebuilding GimmyAI from the ground up to bring you an incredible new experience. This is going to be worth the wait!",
		EstimatedTime: "Coming soon - stay tuned!",
		ShowProgress:  false,
	},
}

// MaintenanceNoticeFor devuelve la configuración del escenario pedido, o el
// escenario "upgrade" si el nombre no existe.
func MaintenanceNoticeFor(scenario string) MaintenanceNotice {
	if notice, ok := maintenanceScenarios[scenario]; ok {
		return notice
	}
	return maintenanceScenarios["upgrade"]
}
