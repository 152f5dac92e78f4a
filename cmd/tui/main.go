package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/shelflife/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/shelflife/internal/catalog/store"
	"github.com/MrJamesThe3rd/shelflife/internal/config"
	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	itemStore "github.com/MrJamesThe3rd/shelflife/internal/item/store"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

type model struct {
	itemService    *item.Service
	catalogService *catalog.Service
	ocrClient      *ocr.Client
	username       string

	currentView View

	scanView  view.ScanModel
	itemsView view.ItemsModel
}

type View int

const (
	ViewMenu  View = 0
	ViewScan  View = 1
	ViewItems View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var (
		items    = itemStore.New(db, cfg.DB.Driver)
		products = catalogStore.New(db, cfg.DB.Driver)
	)

	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := items.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if err := products.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	productClient := product.NewClient(cfg.Products.BaseURL, cfg.Products.UserAgent, cfg.Products.Timeout)

	username := cfg.Username
	if username == "" {
		username, err = askUsername()
		if err != nil {
			slog.Error("failed to read username", "error", err)
			os.Exit(1)
		}
	}

	return model{
		itemService:    item.NewService(items),
		catalogService: catalog.NewService(products, productClient),
		ocrClient:      ocr.NewClient(cfg.OCR.BaseURL, cfg.OCR.Timeout),
		username:       username,
		currentView:    ViewMenu,
	}
}

func askUsername() (string, error) {
	name := os.Getenv("USER")

	err := huh.NewInput().
		Title("Who is stocking the shelf?").
		Value(&name).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("name cannot be empty")
			}
			return nil
		}).
		Run()

	return strings.TrimSpace(name), err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewScan
				m.scanView = view.NewScanModel(m.catalogService, m.ocrClient, m.itemService, m.username)

				return m, m.scanView.Init()
			case "2":
				m.currentView = ViewItems
				m.itemsView = view.NewItemsModel(m.itemService, m.username)

				return m, m.itemsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewScan:
		var newModel tea.Model
		newModel, cmd = m.scanView.Update(msg)
		m.scanView = newModel.(view.ScanModel)
	case ViewItems:
		var newModel tea.Model
		newModel, cmd = m.itemsView.Update(msg)
		m.itemsView = newModel.(view.ItemsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Shelflife TUI\n\n" +
				"Stocking as " + m.username + "\n\n" +
				"1. Scan Item\n" +
				"2. Browse Shelf\n\n" +
				"q. Quit",
		)
	case ViewScan:
		return m.scanView.View()
	case ViewItems:
		return m.itemsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
