package views

type Page struct {
	Title string
	// Refresh reloads the page after this many seconds when positive
	Refresh int
}
