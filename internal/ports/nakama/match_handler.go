package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/heroiclabs/nakama-common/runtime"

	"guandan/internal/bot"
	"guandan/internal/domain"
	"guandan/internal/engine"
)

// MatchState holds the authoritative runtime state for the Nakama match
// handler. The engine itself owns all rule state; this struct only adds
// the lobby/presence/bot-pacing bookkeeping a host needs.
type MatchState struct {
	Seats          [4]string `json:"seats"`            // user id per seat, "" if empty, "bot:N" if AI
	OwnerSeat      int       `json:"owner_seat"`
	LastWinnerSeat int       `json:"last_winner_seat"`
	Tick           int64     `json:"tick"`
	Started        bool      `json:"started"`

	Presences map[string]runtime.Presence `json:"-"`
	Engine    *engine.Engine              `json:"-"`
	Sink      *engine.CollectingSink      `json:"-"`
	// EventCursor is how far into Sink.Events has already been broadcast;
	// the engine itself never truncates the slice.
	EventCursor int `json:"-"`

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`          // seconds
	BotMaxDelay          int   `json:"bot_max_delay"`          // seconds
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`    // seconds
	BotWaitUntil         int64 `json:"bot_wait_until"`         // tick a pending bot turn should act
	BotActingSeat        int   `json:"bot_acting_seat"`        // -1 if no bot turn pending
	LastSinglePlayerTick int64 `json:"last_single_player_tick"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return numSeatsTotal - ms.GetOpenSeatsCount()
}

const numSeatsTotal = 4

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func isBotUserId(userId string) bool {
	return strings.HasPrefix(userId, "bot:")
}

func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

func shouldTerminateAllBots(seats []string) bool {
	if findFirstHumanSeat(seats) != -1 {
		return false
	}
	for _, userId := range seats {
		if isBotUserId(userId) {
			return true
		}
	}
	return false
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	sink := &engine.CollectingSink{}
	eng := engine.New(time.Now().UnixNano(), quartz.NewReal(), sink)

	state := &MatchState{
		Tick:           time.Now().Unix(),
		Presences:      make(map[string]runtime.Presence),
		Engine:         eng,
		Sink:           sink,
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		BotActingSeat:  -1,
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["guandan_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["guandan_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["guandan_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["guandan_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}

	label := map[string]int{MatchLabelKeyOpenSeats: state.GetOpenSeatsCount()}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if !matchState.Started {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}
		if !assigned && !matchState.Started {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: user %s joined but no seat was available", p.GetUserId())
		}
	}

	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: user %s left, seat %d freed", p.GetUserId(), i)
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
	}

	if shouldTerminateAllBots(matchState.Seats[:]) {
		logger.Info("MatchLeave: terminating match with bots only")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handlePlayCards(matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(matchState, dispatcher, logger, msg)
		case OpSubmitTribute:
			mh.handleSubmitTribute(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.Started {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						state.Seats[i] = "bot:" + strconv.Itoa(i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastLobbyState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	if state.BotActingSeat < 0 || state.Tick < state.BotWaitUntil {
		return
	}

	seat := engine.Seat(state.BotActingSeat)
	state.BotActingSeat = -1

	snap := state.Engine.DealView()
	if snap.Phase != engine.PhasePlaying || snap.CurrentSeat != seat {
		return
	}
	hand := state.Engine.Hand(seat).Cards
	cards, pass := bot.LegalMinimumBeater{}.ChoosePlay(snap, hand, seat)
	var err error
	if pass {
		err = state.Engine.Pass(seat)
	} else {
		err = state.Engine.Play(seat, cards)
	}
	if err != nil {
		logger.Warn("processBots: seat %d action failed: %v", seat, err)
	}
	mh.drainEvents(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := seatOf(state, senderID)

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: user %s is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.GetOccupiedSeatCount() < numSeatsTotal {
		logger.Warn("StartGame: need all %d seats filled, have %d", numSeatsTotal, state.GetOccupiedSeatCount())
		return
	}
	if state.Started {
		logger.Warn("StartGame: match already started")
		return
	}

	state.Engine.NewMatch()
	state.Started = true
	state.Engine.NewDeal()

	mh.drainEvents(state, dispatcher, logger)
	logger.Info("StartGame: match started with %d players", state.GetOccupiedSeatCount())
}

func (mh *matchHandler) handlePlayCards(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := seatOf(state, msg.GetUserId())
	if senderSeat < 0 {
		return
	}

	var request struct {
		Cards []domain.Card `json:"cards"`
	}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Error("handlePlayCards: invalid payload: %v", err)
		return
	}

	if err := state.Engine.Play(engine.Seat(senderSeat), request.Cards); err != nil {
		logger.Warn("handlePlayCards: seat %d: %v", senderSeat, err)
		return
	}
	mh.drainEvents(state, dispatcher, logger)
}

func (mh *matchHandler) handlePassTurn(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := seatOf(state, msg.GetUserId())
	if senderSeat < 0 {
		return
	}
	if err := state.Engine.Pass(engine.Seat(senderSeat)); err != nil {
		logger.Warn("handlePassTurn: seat %d: %v", senderSeat, err)
		return
	}
	mh.drainEvents(state, dispatcher, logger)
}

func (mh *matchHandler) handleSubmitTribute(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := seatOf(state, msg.GetUserId())
	if senderSeat < 0 {
		return
	}
	var request struct {
		Card domain.Card `json:"card"`
	}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Error("handleSubmitTribute: invalid payload: %v", err)
		return
	}
	if err := state.Engine.SubmitTribute(engine.Seat(senderSeat), request.Card); err != nil {
		logger.Warn("handleSubmitTribute: seat %d: %v", senderSeat, err)
		return
	}
	mh.drainEvents(state, dispatcher, logger)
}

func seatOf(state *MatchState, userId string) int {
	for i, seatUserId := range state.Seats {
		if seatUserId == userId {
			return i
		}
	}
	return -1
}

// drainEvents broadcasts every engine event generated since the last
// drain, reacting to the ones a host must act on: private hand pushes and
// bot-turn pacing.
func (mh *matchHandler) drainEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for state.EventCursor < len(state.Sink.Events) {
		ev := state.Sink.Events[state.EventCursor]
		state.EventCursor++

		mh.broadcastEvent(state, dispatcher, logger, ev)

		switch ev.Kind {
		case engine.EventHandChanged:
			mh.sendHand(state, dispatcher, ev.Seat)
		case engine.EventTributeRequested:
			if isBotUserId(state.Seats[ev.Seat]) {
				mh.resolveBotTribute(state, ev.Seat, ev.IsReturn, logger)
			}
		case engine.EventPlayerTurnStart:
			if isBotUserId(state.Seats[ev.Seat]) {
				delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
				state.BotWaitUntil = state.Tick + int64(delay)
				state.BotActingSeat = int(ev.Seat)
			}
		case engine.EventDealFinished:
			if len(ev.Placements) > 0 {
				state.LastWinnerSeat = int(ev.Placements[0])
			}
		case engine.EventMatchFinished:
			state.Started = false
		}
	}
}

func (mh *matchHandler) resolveBotTribute(state *MatchState, seat engine.Seat, isReturn bool, logger runtime.Logger) {
	beater := bot.LegalMinimumBeater{}
	level := state.Engine.DealView().Level
	hand := state.Engine.Hand(seat).Cards

	var card domain.Card
	if isReturn {
		card = beater.ChooseReturnTribute(hand, level)
	} else {
		card = beater.ChooseTribute(state.Engine.MatchView(), hand, level)
	}
	if err := state.Engine.SubmitTribute(seat, card); err != nil {
		logger.Warn("resolveBotTribute: seat %d: %v", seat, err)
	}
}

func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev engine.Event) {
	bytes, err := json.Marshal(ev)
	if err != nil {
		logger.Error("broadcastEvent: marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpEngineEvent, bytes, nil, nil, true)
}

// sendHand pushes seat's private hand snapshot only to its own presence,
// never broadcast.
func (mh *matchHandler) sendHand(state *MatchState, dispatcher runtime.MatchDispatcher, seat engine.Seat) {
	userId := state.Seats[seat]
	if userId == "" || isBotUserId(userId) {
		return
	}
	presence, ok := state.Presences[userId]
	if !ok {
		return
	}
	bytes, err := json.Marshal(state.Engine.Hand(seat))
	if err != nil {
		return
	}
	dispatcher.BroadcastMessage(OpHandSnapshot, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) broadcastLobbyState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	bytes, err := json.Marshal(state)
	if err != nil {
		logger.Error("broadcastLobbyState: marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := map[string]int{MatchLabelKeyOpenSeats: state.GetOpenSeatsCount()}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("updateLabel: marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: dispatch: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
