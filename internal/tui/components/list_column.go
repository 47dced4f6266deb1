package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Title, scroll indicators and footer each take one line
	chromeLines = 4
)

// RowRenderer renders one item. It must return exactly the column's row
// height in lines.
type RowRenderer[T any] func(item T, selected bool, width int) string

// Matcher returns the indexes of items matching query, best match first
type Matcher[T any] func(query string, items []T) []int

// ListColumn is a scrollable, filterable list of feed items
type ListColumn[T domain.Titled] struct {
	items     []T
	render    RowRenderer[T]
	match     Matcher[T]
	rowHeight int

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title     string
	loading   bool
	indicator string // spinner frame shown while loading
	footer    string
	empty     string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewListColumn creates a list column whose rows are rowHeight lines tall
func NewListColumn[T domain.Titled](title string, rowHeight int, render RowRenderer[T]) *ListColumn[T] {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	if rowHeight < 1 {
		rowHeight = 1
	}
	return &ListColumn[T]{
		title:       title,
		render:      render,
		match:       FuzzyMatcher[T],
		rowHeight:   rowHeight,
		filterInput: ti,
		empty:       "Nothing to show",
		maxVisible:  1,
	}
}

// FuzzyMatcher matches the items' filter text with sahilm/fuzzy
func FuzzyMatcher[T domain.Titled](query string, items []T) []int {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = strings.ToLower(item.FilterText())
	}
	matches := fuzzy.Find(strings.ToLower(query), texts)

	idx := make([]int, len(matches))
	for i, match := range matches {
		idx[i] = match.Index
	}
	return idx
}

// SetMatcher replaces the filter matcher
func (c *ListColumn[T]) SetMatcher(m Matcher[T]) {
	c.match = m
}

// Update handles navigation and filter keys
func (c *ListColumn[T]) Update(msg tea.Msg) tea.Cmd {
	if !c.focused {
		return nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if c.filterActive && c.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListColumnKeys.Escape):
				c.clearFilter()
				return nil
			case key.Matches(keyMsg, ListColumnKeys.Enter):
				c.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && c.filterInput.Value() == "":
				c.clearFilter()
				return nil
			}
		}

		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return cmd
	}

	if !isKey {
		return nil
	}

	// Filter results shown, navigation mode
	if c.filterActive {
		switch {
		case key.Matches(keyMsg, ListColumnKeys.Escape):
			c.clearFilter()
			return nil
		case key.Matches(keyMsg, ListColumnKeys.Filter):
			c.filterInput.Focus()
			return nil
		}
	}

	if !c.filterActive && key.Matches(keyMsg, ListColumnKeys.Filter) {
		c.ToggleFilter()
		return textinput.Blink
	}

	count := c.ItemCount()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, ListColumnKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
		}
	case key.Matches(keyMsg, ListColumnKeys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(keyMsg, ListColumnKeys.Home):
		c.cursor = 0
	case key.Matches(keyMsg, ListColumnKeys.End):
		c.cursor = count - 1
	case key.Matches(keyMsg, ListColumnKeys.HalfDown):
		c.cursor = min(c.cursor+max(c.maxVisible/2, 1), count-1)
	case key.Matches(keyMsg, ListColumnKeys.HalfUp):
		c.cursor = max(c.cursor-max(c.maxVisible/2, 1), 0)
	}
	c.ensureVisible()
	return nil
}

// View renders the column inside its border
func (c *ListColumn[T]) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

func (c *ListColumn[T]) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *ListColumn[T]) SetFocused(focused bool) {
	c.focused = focused
}

func (c *ListColumn[T]) IsFocused() bool {
	return c.focused
}

func (c *ListColumn[T]) Title() string {
	return c.title
}

func (c *ListColumn[T]) SetTitle(title string) {
	c.title = title
}

// SetItems replaces the items, keeping the cursor where it was so a
// load-more appends under the reader
func (c *ListColumn[T]) SetItems(items []T) {
	c.items = items
	c.loading = false
	if c.filterActive && c.filterQuery != "" {
		c.filteredIdx = c.match(c.filterQuery, c.items)
	}
	if count := c.ItemCount(); c.cursor >= count {
		c.cursor = max(count-1, 0)
	}
	c.ensureVisible()
}

// Items returns every item, ignoring the filter
func (c *ListColumn[T]) Items() []T {
	return c.items
}

// Selected returns the item under the cursor
func (c *ListColumn[T]) Selected() (T, bool) {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count {
		var zero T
		return zero, false
	}
	return c.items[c.mapIndex(c.cursor)], true
}

func (c *ListColumn[T]) SelectedIndex() int {
	return c.cursor
}

func (c *ListColumn[T]) SetSelectedIndex(idx int) {
	count := c.ItemCount()
	if count == 0 {
		c.cursor = 0
		return
	}
	c.cursor = min(max(idx, 0), count-1)
	c.ensureVisible()
}

// ItemCount returns the number of visible (filtered) items
func (c *ListColumn[T]) ItemCount() int {
	if c.filteredIdx != nil {
		return len(c.filteredIdx)
	}
	return len(c.items)
}

// AtEnd reports whether the cursor sits on the last unfiltered item
func (c *ListColumn[T]) AtEnd() bool {
	return !c.filterActive && len(c.items) > 0 && c.cursor >= len(c.items)-1
}

func (c *ListColumn[T]) SetLoading(loading bool) {
	c.loading = loading
}

func (c *ListColumn[T]) IsLoading() bool {
	return c.loading
}

// SetIndicator sets the spinner frame drawn while loading
func (c *ListColumn[T]) SetIndicator(frame string) {
	c.indicator = frame
}

// SetFooter sets the line drawn under the last item
func (c *ListColumn[T]) SetFooter(footer string) {
	c.footer = footer
}

// SetEmptyText sets the text drawn when there is nothing to list
func (c *ListColumn[T]) SetEmptyText(text string) {
	c.empty = text
}

func (c *ListColumn[T]) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

func (c *ListColumn[T]) IsFiltering() bool {
	return c.filterActive
}

func (c *ListColumn[T]) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

func (c *ListColumn[T]) ClearFilter() {
	c.clearFilter()
}

// SetFilter applies query as if it had been typed
func (c *ListColumn[T]) SetFilter(query string) {
	c.filterActive = true
	c.filterInput.SetValue(query)
	c.applyFilter()
	c.recalcMaxVisible()
}

func (c *ListColumn[T]) recalcMaxVisible() {
	interior := c.height - BorderHeight - chromeLines
	if c.filterActive {
		interior--
	}
	c.maxVisible = max(interior/c.rowHeight, 1)
}

func (c *ListColumn[T]) ensureVisible() {
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

func (c *ListColumn[T]) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.filteredIdx = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
}

func (c *ListColumn[T]) applyFilter() {
	query := c.filterInput.Value()
	c.filterQuery = query

	if query == "" {
		c.filteredIdx = nil
		return
	}

	c.filteredIdx = c.match(query, c.items)
	if c.filteredIdx == nil {
		c.filteredIdx = []int{}
	}
	c.cursor = 0
	c.offset = 0
}

func (c *ListColumn[T]) mapIndex(i int) int {
	if c.filteredIdx != nil && i < len(c.filteredIdx) {
		return c.filteredIdx[i]
	}
	return i
}

func (c *ListColumn[T]) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)

	lines := []string{styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))}
	if c.filterActive {
		lines = append(lines, c.filterInput.View())
	}

	count := c.ItemCount()
	if count == 0 {
		switch {
		case c.loading:
			lines = append(lines, "", styles.DimStyle.Render(c.indicator+" Loading..."))
		case c.filterActive && c.filterQuery != "":
			lines = append(lines, "", styles.DimStyle.Render("No matches"))
		default:
			lines = append(lines, "", styles.DimStyle.Render(c.empty))
		}
		return strings.Join(lines, "\n")
	}

	if c.offset > 0 {
		lines = append(lines, styles.DimStyle.Render("↑ more"))
	} else {
		lines = append(lines, "")
	}

	end := min(c.offset+c.maxVisible, count)
	for i := c.offset; i < end; i++ {
		item := c.items[c.mapIndex(i)]
		lines = append(lines, c.render(item, i == c.cursor && c.focused, itemWidth))
	}

	switch {
	case end < count:
		lines = append(lines, styles.DimStyle.Render("↓ more"))
	case c.loading:
		lines = append(lines, styles.DimStyle.Render(c.indicator+" Loading more..."))
	case c.footer != "":
		lines = append(lines, styles.DimStyle.Render(c.footer))
	}

	return strings.Join(lines, "\n")
}
