package roster

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kurzickkrozz/GWPB/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	parties []domain.Party
	opts    RenderOptions
	styles  styles
	output  string
}

func newModel(parties []domain.Party, opts RenderOptions) model {
	return model{
		parties: parties,
		opts:    opts,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.parties, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the active parties as a one-shot terminal view.
func Render(parties []domain.Party, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(parties, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
