package chatbot

// El asistente del portal es un diálogo guiado, no un motor de lenguaje: un
// grafo dirigido estático que la UI recorre nodo por nodo. Aquí no vive
// ninguna lógica de negocio, solo el contenido.

type Option struct {
	Text   string `json:"text"`
	NextID string `json:"nextId"`
}

type Node struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// StartNodeID es el nodo inicial del diálogo.
const StartNodeID = "main_menu"

// Graph devuelve el grafo de diálogo indexado por id de nodo.
func Graph() map[string]Node {
	return dialogue
}

// Lookup devuelve un nodo por id.
func Lookup(id string) (Node, bool) {
	n, ok := dialogue[id]
	return n, ok
}

var dialogue = map[string]Node{
	"main_menu": {
		ID:   "main_menu",
		Text: "¡Hola! Soy el asistente virtual de DISERCOMI. ¿En qué puedo ayudarte?",
		Options: []Option{
			{Text: "Iniciar un trámite", NextID: "start_procedure"},
			{Text: "Seguimiento de trámite", NextID: "track_procedure"},
			{Text: "Requisitos de trámites", NextID: "requirements"},
			{Text: "Preguntas frecuentes", NextID: "faq"},
			{Text: "Información de contacto", NextID: "contact"},
		},
	},
	"start_procedure": {
		ID:   "start_procedure",
		Text: "¿Qué trámite deseas iniciar?",
		Options: []Option{
			{Text: "Calificación Decreto 29-89", NextID: "decreto_info"},
			{Text: "Requisitos generales", NextID: "requirements"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"decreto_info": {
		ID: "decreto_info",
		Text: "La Calificación para el Decreto 29-89 otorga beneficios fiscales a " +
			"empresas exportadoras y de maquila. Necesitarás patente de comercio, RTU " +
			"actualizado, DPI del representante legal, estados financieros y plan de inversión.",
		Options: []Option{
			{Text: "Iniciar este trámite ahora", NextID: "redirect_procedure"},
			{Text: "Ver otros trámites", NextID: "start_procedure"},
		},
	},
	"track_procedure": {
		ID:   "track_procedure",
		Text: "Para dar seguimiento necesitas tu código de rastreo (empieza con DIS-). ¿Lo tienes a mano?",
		Options: []Option{
			{Text: "Sí, tengo mi código", NextID: "redirect_tracking"},
			{Text: "No tengo mi código", NextID: "no_tracking_code"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"no_tracking_code": {
		ID: "no_tracking_code",
		Text: "Tu código de rastreo aparece en el correo de confirmación y en tu panel " +
			"de trámites al iniciar sesión.",
		Options: []Option{
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"requirements": {
		ID: "requirements",
		Text: "Los trámites requieren documentación en PDF: patente de comercio, RTU, " +
			"DPI del representante legal, estados financieros y plan de inversión.",
		Options: []Option{
			{Text: "Preguntas frecuentes", NextID: "faq"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"faq": {
		ID:   "faq",
		Text: "Preguntas frecuentes:",
		Options: []Option{
			{Text: "¿Cuánto tiempo toma un trámite?", NextID: "faq_time"},
			{Text: "¿Cómo consulto el estado?", NextID: "faq_status"},
			{Text: "¿Qué pasa si rechazan mi trámite?", NextID: "faq_rejected"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"faq_time": {
		ID: "faq_time",
		Text: "Un trámite de calificación toma en promedio 15 días hábiles, según la " +
			"carga de la dirección y la completitud del expediente.",
		Options: []Option{
			{Text: "Otras preguntas frecuentes", NextID: "faq"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"faq_status": {
		ID: "faq_status",
		Text: "Puedes consultar el estado en cualquier momento con tu código de rastreo, " +
			"sin necesidad de iniciar sesión.",
		Options: []Option{
			{Text: "Ir a seguimiento", NextID: "redirect_tracking"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"faq_rejected": {
		ID: "faq_rejected",
		Text: "Si tu trámite es rechazado recibirás los motivos en los comentarios del " +
			"expediente y puedes presentar una nueva solicitud corregida.",
		Options: []Option{
			{Text: "Otras preguntas frecuentes", NextID: "faq"},
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	"contact": {
		ID: "contact",
		Text: "DISERCOMI — Ministerio de Economía. Correo: disercomi@mineco.gob.gt, " +
			"teléfono: +502 2412-0200. Horario: lunes a viernes de 8:00 a 16:30.",
		Options: []Option{
			{Text: "Volver al menú principal", NextID: "main_menu"},
		},
	},
	// Nodos hoja que la UI interpreta como navegación.
	"redirect_procedure": {
		ID:   "redirect_procedure",
		Text: "Te llevo al formulario de nueva solicitud.",
	},
	"redirect_tracking": {
		ID:   "redirect_tracking",
		Text: "Te llevo a la página de seguimiento.",
	},
}
