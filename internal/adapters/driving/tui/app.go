package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/views/quiz"
	"github.com/custodia-labs/preppal/internal/adapters/driving/tui/views/results"
	"github.com/custodia-labs/preppal/internal/core/domain"
)

// App is the quiz runner following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// request describes the quiz to generate.
	request domain.QuizRequest

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	status  *status.Bar

	quizView    *quiz.View
	resultsView *results.View

	// items holds the generated quiz.
	items []domain.QuizItem

	// score is set once the quiz is finished.
	score *domain.QuizScore

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a quiz runner that generates req through ports.Quiz.
func NewApp(ports *Ports, req domain.QuizRequest) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		request:     req,
		styles:      s,
		keymap:      km,
		spinner:     sp,
		status:      status.NewBar(s, km),
		quizView:    quiz.NewView(s, km),
		resultsView: results.NewView(s),
		currentView: messages.ViewLoading,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It starts the spinner and quiz generation.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("preppal - Quiz"),
		a.spinner.Tick,
		a.generate(),
	)
}

// generate runs quiz generation off the update loop.
func (a *App) generate() tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Quiz
	req := a.request
	return func() tea.Msg {
		items, err := svc.Generate(ctx, req)
		return messages.QuizGenerated{Items: items, Err: err}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.quizView.SetDimensions(msg.Width, msg.Height)
		a.status.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keymap.Matches(keyStr, a.keymap.Quit) {
			return a, tea.Quit
		}

		if a.currentView == messages.ViewHelp {
			if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) {
				a.currentView = a.previousView
			}
			return a, nil
		}
		if keymap.Matches(keyStr, a.keymap.Help) {
			a.previousView = a.currentView
			a.currentView = messages.ViewHelp
			return a, nil
		}

		if a.currentView == messages.ViewQuestion {
			a.quizView, cmd = a.quizView.Update(msg)
			a.syncStatus()
			return a, cmd
		}
		return a, nil

	case spinner.TickMsg:
		if a.currentView != messages.ViewLoading {
			return a, nil
		}
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.QuizGenerated:
		if msg.Err != nil {
			return a.Update(messages.ErrorOccurred{Err: msg.Err})
		}
		if len(msg.Items) == 0 {
			return a.Update(messages.ErrorOccurred{Err: ErrNoQuestions})
		}
		a.items = msg.Items
		a.quizView.SetItems(msg.Items)
		a.currentView = messages.ViewQuestion
		a.syncStatus()
		return a, nil

	case messages.AnswerSubmitted:
		a.syncStatus()
		return a, nil

	case messages.QuizFinished:
		score := msg.Score
		a.score = &score
		a.resultsView.SetResult(a.items, a.quizView.Answers(), score)
		a.currentView = messages.ViewResults
		a.syncStatus()
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.currentView = messages.ViewError
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// syncStatus mirrors quiz progress into the status bar.
func (a *App) syncStatus() {
	switch a.currentView {
	case messages.ViewQuestion:
		if a.quizView.Revealed() {
			a.status.SetState(status.StateFeedback)
		} else {
			a.status.SetState(status.StateQuestion)
		}
	case messages.ViewResults:
		a.status.SetState(status.StateFinished)
	case messages.ViewLoading, messages.ViewHelp, messages.ViewError:
		return
	}
	a.status.SetProgress(a.quizView.Current()+1, a.quizView.Total(), a.quizView.CorrectSoFar())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewLoading:
		body = a.spinner.View() + " Generating questions..."
	case messages.ViewQuestion:
		body = a.quizView.View()
	case messages.ViewResults:
		body = a.resultsView.View()
	case messages.ViewError:
		body = a.styles.Error.Render(fmt.Sprintf("Could not generate quiz: %v", a.err)) +
			"\n\n" + a.styles.Help.Render("[q] quit")
	case messages.ViewHelp:
		body = a.viewHelp()
	}

	return body + "\n\n" + a.status.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Question:
  j/k, ↑/↓    Highlight option
  1-4         Answer with option number
  enter       Answer with highlighted option

Feedback:
  enter, n    Next question

  ?, esc      Close help
  q, ctrl+c   Quit`
}

// Run starts the TUI application and returns the final score, or nil if
// the learner quit before finishing.
func (a *App) Run() (*domain.QuizScore, error) {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.score, nil
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Score returns the final score once the quiz is finished.
func (a *App) Score() *domain.QuizScore {
	return a.score
}

// Items returns the generated quiz items.
func (a *App) Items() []domain.QuizItem {
	return a.items
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
