package dashboard

// Page is the layout shell heading.
type Page struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// DefaultPage returns the dashboard heading.
func DefaultPage() Page {
	return Page{
		Title:    "Pharmacy Dashboard",
		Subtitle: "Welcome back! Here's what's happening today.",
	}
}

func (p Page) withDefaults() Page {
	def := DefaultPage()
	if p.Title == "" {
		p.Title = def.Title
	}
	if p.Subtitle == "" {
		p.Subtitle = def.Subtitle
	}
	return p
}
