package categories

// Category is one row of the categories fragment.
type Category struct {
	Name   string
	Branch string
}

// Page is one page of categories. NextPage is zero on the last page.
type Page struct {
	Categories []Category
	NextPage   int
}
