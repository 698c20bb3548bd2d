package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"taleforge/internal/game"
	"taleforge/internal/metrics"
	"taleforge/internal/session"
)

const testStoryID = "trail"

func testCatalog() *game.Catalog {
	stock := 1
	return &game.Catalog{
		Races: map[string]game.StatBlock{"human": {game.StatStrength: 1}},
		Classes: map[string]game.ClassDef{
			"warrior": {ID: "warrior", Name: "Warrior", BaseStats: game.StatBlock{game.StatStrength: 3, game.StatVitality: 2}, Gold: 10},
			"knight":  {ID: "knight", Name: "Knight", Tier: 1},
		},
		Items: map[string]game.Item{
			"potion": {ID: "potion", Name: "Healing Potion", Type: game.ItemConsumable, SubType: game.SubPotion, Value: 10, Stackable: true, Quantity: 1, Effects: game.Effects{Hearts: 5}},
		},
		Shops: map[string]game.Shop{
			"market": {ID: "market", Name: "Market", BuyMultiplier: 1.5, SellMultiplier: 1,
				Items: []game.ShopItem{{ItemID: "potion", Category: "potions", Stock: &stock}}},
		},
		Monsters: map[string]game.Monster{
			"rat": {ID: "rat", Name: "Rat", Stats: game.MonsterStats{Health: 1, Attack: 0}},
		},
		Stories: map[string]*game.Story{testStoryID: {
			ID:    testStoryID,
			Title: "The Trail",
			Start: "start",
			Nodes: map[string]*game.Node{
				"start": {ID: "start", Type: game.NodeStory, Text: "Hello {player_name}.", Choices: []game.Choice{
					{Text: "Visit the market", Next: "market"},
					{Text: "Step on the trap", Next: "end", Effects: game.Effects{Hearts: -100}},
					{Text: "Chase the rat", Next: "cellar"},
				}},
				"market": {ID: "market", Type: game.NodeShop, Shop: &game.ShopRef{ShopID: "market"}, Choices: []game.Choice{
					{Text: "Leave", Next: "start"},
				}},
				"cellar": {ID: "cellar", Type: game.NodeCombat, Monster: "rat", Choices: []game.Choice{
					{Text: "Victory", Next: "end", Require: game.ChoiceRequire{BattleResult: game.OutcomeWin}},
					{Text: "Defeat", Next: "end", Require: game.ChoiceRequire{BattleResult: game.OutcomeLose}},
					{Text: "Run", Next: "start", Require: game.ChoiceRequire{BattleResult: game.OutcomeEscape}},
				}},
				"end": {ID: "end", Type: game.NodeEnding, Ending: true},
			},
		}},
	}
}

func testServer(t *testing.T, saves session.Store[game.Session]) *Server {
	t.Helper()
	e := &game.Engine{Catalog: testCatalog(), Rand: game.NewSeededRand(1, 2)}
	return NewServer(e, saves, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("Expected a session cookie")
	return nil
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var out response
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func newGame(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/new", `{"name":"Ada","gender":"female","race":"human","class":"warrior","story":"trail"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func TestHandleIndex(t *testing.T) {
	rec := do(t, testServer(t, nil).Routes(), http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusFound {
		t.Errorf("Expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/state" {
		t.Errorf("Expected Location /state, got %q", loc)
	}
}

func TestHandleOptions(t *testing.T) {
	rec := do(t, testServer(t, nil).Routes(), http.MethodGet, "/options", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var out options
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode options: %v", err)
	}
	if len(out.Classes) != 1 || out.Classes[0].ID != "warrior" {
		t.Errorf("Expected only the tier 0 warrior, got %+v", out.Classes)
	}
	if len(out.Stories) != 1 || out.Stories[0].Title != "The Trail" {
		t.Errorf("Expected the trail story, got %+v", out.Stories)
	}
	if len(out.Races) != 1 || out.Races[0] != "human" {
		t.Errorf("Expected races [human], got %v", out.Races)
	}
}

func TestNewAndState(t *testing.T) {
	saves := session.NewMemoryStore[game.Session]()
	h := testServer(t, saves).Routes()
	cookie := newGame(t, h)

	rec := do(t, h, http.MethodGet, "/state", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	out := decodeResponse(t, rec)
	if out.View == nil || out.View.Text != "Hello Ada." {
		t.Errorf("Expected the rendered start text, got %+v", out.View)
	}
	if len(out.View.Choices) != 3 {
		t.Errorf("Expected 3 open choices, got %d", len(out.View.Choices))
	}

	saved, ok, err := saves.Get(context.Background(), cookie.Value)
	if err != nil || !ok {
		t.Fatalf("Expected the new game to be saved, ok=%v err=%v", ok, err)
	}
	if saved.Player.ID != cookie.Value || saved.Player.CurrentNode != "start" {
		t.Errorf("Unexpected saved player %+v", saved.Player)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	h := testServer(t, nil).Routes()
	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":"  ","race":"human","class":"warrior"}`},
		{"unknown race", `{"name":"Ada","race":"orc","class":"warrior"}`},
		{"unknown class", `{"name":"Ada","race":"human","class":"bard"}`},
		{"advanced class", `{"name":"Ada","race":"human","class":"knight"}`},
		{"unknown story", `{"name":"Ada","race":"human","class":"warrior","story":"moon"}`},
		{"unknown gender", `{"name":"Ada","gender":"robot","race":"human","class":"warrior"}`},
		{"unknown field", `{"name":"Ada","race":"human","class":"warrior","avatar":"x"}`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/new", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNoSession(t *testing.T) {
	h := testServer(t, nil).Routes()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/state"},
		{http.MethodPost, "/roll"},
		{http.MethodPost, "/combat/enter"},
	} {
		rec := do(t, h, tc.method, tc.path, "", &http.Cookie{Name: cookieName, Value: "missing"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestWrongMethod(t *testing.T) {
	rec := do(t, testServer(t, nil).Routes(), http.MethodGet, "/choose", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestChooseAdvancesAndSaves(t *testing.T) {
	saves := session.NewMemoryStore[game.Session]()
	h := testServer(t, saves).Routes()
	cookie := newGame(t, h)

	rec := do(t, h, http.MethodPost, "/choose", `{"index":0}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	out := decodeResponse(t, rec)
	if !out.Result.Advanced || out.View.Node.ID != "market" {
		t.Errorf("Expected to reach the market, got %+v", out.Result)
	}
	if out.View.Shop == nil || len(out.View.Shop.Offers) != 1 {
		t.Errorf("Expected the market's price list, got %+v", out.View.Shop)
	}
	saved, _, _ := saves.Get(context.Background(), cookie.Value)
	if saved.Player.CurrentNode != "market" {
		t.Errorf("Expected the save to follow the player, got %q", saved.Player.CurrentNode)
	}

	rec = do(t, h, http.MethodPost, "/choose", `{"index":9}`, cookie)
	if out := decodeResponse(t, rec); out.Result.Message != "That choice doesn't exist." {
		t.Errorf("Expected a refusal, got %+v", out.Result)
	}
}

func TestChooseRequiresIndex(t *testing.T) {
	h := testServer(t, nil).Routes()
	cookie := newGame(t, h)
	rec := do(t, h, http.MethodPost, "/choose", `{}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestDeathForgetsSession(t *testing.T) {
	saves := session.NewMemoryStore[game.Session]()
	h := testServer(t, saves).Routes()
	cookie := newGame(t, h)
	before := testutil.ToFloat64(metrics.Deaths)

	rec := do(t, h, http.MethodPost, "/choose", `{"index":1}`, cookie)
	out := decodeResponse(t, rec)
	if !out.Result.Died || out.Result.Phase != game.PhaseDead {
		t.Fatalf("Expected the trap to kill, got %+v", out.Result)
	}
	if got := testutil.ToFloat64(metrics.Deaths) - before; got != 1 {
		t.Errorf("Expected one death counted, got %v", got)
	}
	if _, ok, _ := saves.Get(context.Background(), cookie.Value); ok {
		t.Error("Expected the save to be deleted")
	}
	if rec := do(t, h, http.MethodGet, "/state", "", cookie); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after death, got %d", rec.Code)
	}
}

func TestCombatFlow(t *testing.T) {
	h := testServer(t, nil).Routes()
	cookie := newGame(t, h)

	out := decodeResponse(t, do(t, h, http.MethodPost, "/choose", `{"index":2}`, cookie))
	if out.Result.Phase != game.PhaseStory || !out.View.CanFight {
		t.Fatalf("Expected to stand before the fight, got %+v", out.Result)
	}
	out = decodeResponse(t, do(t, h, http.MethodPost, "/combat/enter", "", cookie))
	if out.Result.Phase != game.PhaseCombat {
		t.Fatalf("Expected combat, got %+v", out.Result)
	}
	out = decodeResponse(t, do(t, h, http.MethodPost, "/combat/action", `{"action":"attack"}`, cookie))
	if out.Result.Outcome != game.OutcomeWin {
		t.Fatalf("Expected to beat the rat, got %+v", out.Result)
	}
	if out.View.Node.ID != "end" {
		t.Errorf("Expected the win branch to the end, got %q", out.View.Node.ID)
	}
}

func TestShopBuy(t *testing.T) {
	h := testServer(t, nil).Routes()
	cookie := newGame(t, h)
	do(t, h, http.MethodPost, "/choose", `{"index":0}`, cookie)

	out := decodeResponse(t, do(t, h, http.MethodPost, "/shop/buy", `{"item":"potion"}`, cookie))
	if out.Result.Message != "" {
		t.Fatalf("Expected the purchase to succeed, got %q", out.Result.Message)
	}
	if out.View.Player.Stats.Gold != 15 {
		t.Errorf("Expected 30 - 15 gold, got %d", out.View.Player.Stats.Gold)
	}
	out = decodeResponse(t, do(t, h, http.MethodPost, "/shop/buy", `{"item":"potion"}`, cookie))
	if out.Result.Message != "That item is sold out." {
		t.Errorf("Expected sold out, got %q", out.Result.Message)
	}

	if rec := do(t, h, http.MethodPost, "/shop/buy", `{}`, cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without an item, got %d", rec.Code)
	}
}

func TestUnequipUnknownSlot(t *testing.T) {
	h := testServer(t, nil).Routes()
	cookie := newGame(t, h)
	rec := do(t, h, http.MethodPost, "/items/unequip", `{"slot":"tail"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestJournal(t *testing.T) {
	h := testServer(t, nil).Routes()
	cookie := newGame(t, h)
	rec := do(t, h, http.MethodGet, "/journal.pdf", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Expected a PDF body")
	}

	if rec := do(t, h, http.MethodGet, "/journal.pdf", "", nil); rec.Code != http.StatusFound {
		t.Errorf("Expected a redirect without a session, got %d", rec.Code)
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	saves := session.NewMemoryStore[game.Session]()
	srv := testServer(t, saves)
	h := srv.Routes()

	p, err := game.NewPlayer(srv.Engine.Catalog, "Bo", game.GenderMale, "human", "warrior")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	gs := game.NewSession(p)
	if err := srv.Engine.Start(gs, testStoryID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	gs.Player.CurrentNode = "cellar"
	gs.Phase = game.PhaseCombat
	if err := saves.Put(ctx, "save-1", gs.Snapshot()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec := do(t, h, http.MethodPost, "/resume", `{"id":"save-1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	out := decodeResponse(t, rec)
	if out.View.Phase != game.PhaseStory || out.View.Node.ID != "cellar" {
		t.Errorf("Expected to stand before the fight again, got %s at %s", out.View.Phase, out.View.Node.ID)
	}
	if rec := do(t, h, http.MethodGet, "/state", "", cookie); rec.Code != http.StatusOK {
		t.Errorf("Expected the resumed game to be live, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/resume", `{"id":"nope"}`, nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown save, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/resume", `{}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without an id, got %d", rec.Code)
	}
}

type failingStore struct {
	*session.MemoryStore[game.Session]
}

func (failingStore) Put(context.Context, string, game.Session) error {
	return errors.New("disk full")
}

func TestSaveFailureKeepsPlaying(t *testing.T) {
	h := testServer(t, failingStore{session.NewMemoryStore[game.Session]()}).Routes()
	before := testutil.ToFloat64(metrics.SaveFailures)

	cookie := newGame(t, h)
	rec := do(t, h, http.MethodPost, "/choose", `{"index":0}`, cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected play to continue, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(metrics.SaveFailures) - before; got != 2 {
		t.Errorf("Expected 2 save failures counted, got %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testServer(t, nil).Routes()
	do(t, h, http.MethodGet, "/options", "", nil)
	rec := do(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `taleforge_http_requests_total{route="GET /options",status="200"}`) {
		t.Error("Expected the options request to be counted")
	}
}
