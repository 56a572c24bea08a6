package selector

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"moviereview/pkg/models"
)

const (
	pickerWidth  = 80
	pickerHeight = 14
)

var pickerTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var pickerSelectedTitle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(lipgloss.Color("6")).
	Foreground(lipgloss.Color("6")).
	Bold(true).
	Padding(0, 0, 0, 1)

var pickerSelectedDesc = pickerSelectedTitle.Bold(false).Faint(true)

// movieItem wraps a candidate for the list component.
type movieItem struct {
	movie models.Movie
	index int
}

func (i movieItem) Title() string {
	return fmt.Sprintf("%d. %s", i.index+1, Label(i.movie))
}

func (i movieItem) Description() string {
	desc := i.movie.DefaultTitle
	if i.movie.Runtime != nil {
		desc = fmt.Sprintf("%s • %d min", desc, *i.movie.Runtime)
	}
	return desc
}

func (i movieItem) FilterValue() string {
	return i.movie.OriginalTitle + " " + i.movie.DefaultTitle
}

type pickerModel struct {
	list      list.Model
	choice    int
	cancelled bool
}

func newPickerModel(movies []models.Movie) pickerModel {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, index: i}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = pickerSelectedTitle
	delegate.Styles.SelectedDesc = pickerSelectedDesc

	l := list.New(items, delegate, pickerWidth, pickerHeight)
	l.Title = "SEARCH RESULTS 🔎"
	l.Styles.Title = pickerTitleStyle
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return pickerModel{list: l, choice: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height, pickerHeight))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.choice = m.list.Index()
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.choice >= 0 || m.cancelled {
		return ""
	}
	return m.list.View()
}

// Picker is a full-screen list selector. The first movie is highlighted, so
// pressing enter straight away picks it.
type Picker struct {
	in  io.Reader
	out io.Writer
}

func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{in: in, out: out}
}

func (p *Picker) Select(ctx context.Context, movies []models.Movie) (models.Movie, error) {
	if len(movies) == 0 {
		return models.Movie{}, ErrNoCandidates
	}

	program := tea.NewProgram(newPickerModel(movies),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Movie{}, ctxErr
	}
	if err != nil {
		return models.Movie{}, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.choice < 0 || m.choice >= len(movies) {
		return models.Movie{}, ErrCancelled
	}
	return movies[m.choice], nil
}
