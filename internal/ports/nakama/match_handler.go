package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"wordcircuit/internal/app"
	"wordcircuit/internal/bot"
	"wordcircuit/internal/config"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/wire"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats                [app.Seats]string           `json:"seats"`                   // User IDs by side, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"`              // Seat index of the match owner
	Tick                 int64                       `json:"tick"`                    // Current tick of the match
	Modes                domain.Modes                `json:"modes"`                   // Modes used for the next deal
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`                       // Word circuit app service with game logic
	Game                 *domain.Game                `json:"-"`                       // Current game state (nil until the first deal)
	BotsEnabled          bool                        `json:"bots_enabled"`            // Whether AI players are allowed
	BotLevel             bot.BotLevel                `json:"bot_level"`               // Level for bots without one in the roster
	BotMinDelay          int                         `json:"bot_min_delay"`           // Min ticks a bot waits before moving
	BotMaxDelay          int                         `json:"bot_max_delay"`           // Max ticks a bot waits before moving
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`     // Ticks to wait before auto-filling with a bot
	BotStepBudget        int                         `json:"bot_step_budget"`         // Search units a bot runs per tick
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the bot may act
	BotMove              *bot.Move                   `json:"-"`                       // Finished search waiting for BotWaitUntil
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent       `json:"-"`                       // Active bot agents
	BotOptions           []bot.Option                `json:"-"`                       // Search overrides from config
	rng                  *rand.Rand
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
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func (ms *MatchState) isBotUserId(userId string) bool {
	if _, ok := ms.Bots[userId]; ok {
		return true
	}
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func (ms *MatchState) isHumanSeat(seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(ms.Seats) {
		return false
	}
	userId := ms.Seats[seatIndex]
	return userId != "" && !ms.isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func (ms *MatchState) findFirstHumanSeat() int {
	for i := range ms.Seats {
		if ms.isHumanSeat(i) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func (ms *MatchState) shouldTerminateNoHumans() bool {
	return ms.findFirstHumanSeat() == -1
}

// seatOf returns the side a user plays.
func (ms *MatchState) seatOf(userId string) (domain.Side, bool) {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userId {
			return domain.Side(i), true
		}
	}
	return 0, false
}

// inProgress reports whether a deal is being played.
func (ms *MatchState) inProgress() bool {
	return ms.Game != nil && ms.Game.Phase == domain.PhasePlaying
}

type matchHandler struct {
	dict domain.Dictionary
	cfg  *config.GameConfig
}

func newMatchHandler(dict domain.Dictionary, cfg *config.GameConfig) *matchHandler {
	if cfg == nil {
		cfg = config.GetGameConfig()
	}
	return &matchHandler{dict: dict, cfg: cfg}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities(mh.cfg.BotIdentitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	modes, err := mh.cfg.Modes()
	if err != nil {
		logger.Warn("MatchInit: Invalid default modes, using DYNAMIC/ACROSTIC: %v", err)
		modes = domain.Modes{}
	}
	gameMode, _ := params["game_mode"].(string)
	placementMode, _ := params["placement_mode"].(string)
	if gameMode != "" || placementMode != "" {
		if requested, err := domain.ParseModes(gameMode, placementMode); err == nil {
			modes = requested
		} else {
			logger.Warn("MatchInit: Ignoring requested modes: %v", err)
		}
	}

	level, err := bot.ParseBotLevel(mh.cfg.BotLevel)
	if err != nil {
		logger.Warn("MatchInit: %v, using standard bots", err)
		level = bot.BotLevelStandard
	}

	state := &MatchState{
		Modes:            modes,
		OwnerSeat:        -1,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil, mh.dict, newServiceLogger(logger, "app")),
		Bots:             make(map[string]*bot.Agent),
		BotLevel:         level,
		BotMinDelay:      mh.cfg.BotMinDelaySeconds * MatchTickRate,
		BotMaxDelay:      mh.cfg.BotMaxDelaySeconds * MatchTickRate,
		BotAutoFillDelay: mh.cfg.BotAutoFillDelaySeconds * MatchTickRate,
		BotStepBudget:    mh.cfg.BotStepBudget,
		BotOptions:       []bot.Option{bot.WithMaxAnchors(mh.cfg.SearchMaxAnchors), bot.WithSampleSize(mh.cfg.SearchSampleSize)},
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Runtime environment overrides.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["wordcircuit_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if i, ok := envInt(env, "wordcircuit_bot_min_delay_sec"); ok {
		state.BotMinDelay = i * MatchTickRate
	}
	if i, ok := envInt(env, "wordcircuit_bot_max_delay_sec"); ok {
		state.BotMaxDelay = i * MatchTickRate
	}
	if i, ok := envInt(env, "wordcircuit_bot_auto_fill_delay_sec"); ok {
		state.BotAutoFillDelay = i * MatchTickRate
	}
	if i, ok := envInt(env, "wordcircuit_bot_step_budget"); ok && i > 0 {
		state.BotStepBudget = i
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if state.BotStepBudget <= 0 {
		state.BotStepBudget = bot.DefaultStepBudget
	}

	label, err := mh.buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, MatchTickRate, label
}

func envInt(env map[string]string, key string) (int, bool) {
	val, ok := env[key]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Returning players always get their seat back.
	if _, seated := matchState.seatOf(presence.GetUserId()); seated {
		return state, true, ""
	}

	// Allow join if there is an empty seat OR a bot to replace (if no deal is running)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if !matchState.inProgress() {
			for _, seat := range matchState.Seats {
				if matchState.isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
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

		if _, seated := matchState.seatOf(p.GetUserId()); seated {
			logger.Info("MatchJoin: User %s rejoined.", p.GetUserId())
			continue
		}

		// Assign seat: Try empty seats first, then bots (if no deal is running)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && !matchState.inProgress() {
			for i, seatUserId := range matchState.Seats {
				if matchState.isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !matchState.isHumanSeat(matchState.OwnerSeat) {
		matchState.OwnerSeat = matchState.findFirstHumanSeat()
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	// Joiners of a running deal need the board and their hand.
	if matchState.Game != nil {
		mh.broadcastSnapshots(matchState, dispatcher, logger)
	}

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	ownerLeft := false
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)

				if matchState.OwnerSeat == i {
					ownerLeft = true
				}
				break
			}
		}
	}

	newOwnerSeat := matchState.findFirstHumanSeat()
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		} else if ownerLeft {
			logger.Debug("MatchLeave: Owner left and no human owner is available.")
		}
	}

	if matchState.shouldTerminateNoHumans() {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

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
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceTile:
			mh.handlePlaceTile(ctx, matchState, dispatcher, logger, msg)
		case OpRecallTiles:
			mh.handleRecallTiles(ctx, matchState, dispatcher, logger, msg)
		case OpCommitMove:
			mh.handleCommitMove(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpSetModes:
			mh.handleSetModes(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the empty seat with a bot when a single human waits in the lobby.
	if !state.inProgress() {
		if state.GetHumanPlayerCount() == 1 && state.GetOpenSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					if identity.UserID == "" {
						identity.UserID = fmt.Sprintf("bot-%d", i)
					}
					agent, err := mh.newAgent(state, identity, domain.Side(i), logger)
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = identity.UserID
					state.Bots[identity.UserID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Run the bot's search a slice per tick and move once it is done and the delay elapsed.
	side := state.Game.Current
	userID := state.Seats[side]
	agent, isBot := state.Bots[userID]
	if !isBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotMove == nil && !agent.Thinking() {
		delay := state.BotMinDelay
		if state.BotMaxDelay > state.BotMinDelay {
			if state.rng == nil {
				state.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			}
			delay += state.rng.Intn(state.BotMaxDelay - state.BotMinDelay + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		agent.Begin(state.Game)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", userID, side, state.BotWaitUntil, state.Tick)
	}

	if state.BotMove == nil {
		move, done := agent.Step(state.BotStepBudget)
		if !done {
			return
		}
		state.BotMove = &move
	}

	if state.Tick < state.BotWaitUntil {
		return
	}
	move := *state.BotMove
	state.BotMove = nil
	state.BotWaitUntil = 0

	var events []app.Event
	var err error
	if !move.Pass {
		events, err = state.App.ApplyPlacements(state.Game, side, move.Placements)
		if err != nil {
			logger.Warn("processBots: Bot %s move %q rejected, passing instead: %v", userID, move.Word, err)
		}
	}
	if move.Pass || err != nil {
		events, err = state.App.PassTurn(state.Game, side)
		if err != nil {
			logger.Error("processBots: Bot %s failed to pass: %v", userID, err)
			return
		}
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// newAgent seats a bot brain of the identity's level, or the match's default level.
func (mh *matchHandler) newAgent(state *MatchState, identity bot.BotIdentity, side domain.Side, logger runtime.Logger) (*bot.Agent, error) {
	level := state.BotLevel
	if identity.Level != "" {
		level = identity.BotLevel()
	}
	brain, err := bot.NewBrain(level, mh.dict, nil, newServiceLogger(logger, "bot"), state.BotOptions...)
	if err != nil {
		return nil, err
	}
	agent := bot.NewAgent(identity.UserID, side, brain)
	if identity.DisplayName != "" {
		agent.Name = identity.DisplayName
	}
	return agent, nil
}

// cancelBots drops any search in flight; the position it was started for is gone.
func (mh *matchHandler) cancelBots(state *MatchState) {
	for _, agent := range state.Bots {
		agent.Cancel()
	}
	state.BotMove = nil
	state.BotWaitUntil = 0
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	msg := &wire.MatchStateSnapshot{
		Seats:       state.Seats[:],
		OwnerSeat:   state.OwnerSeat,
		Tick:        state.Tick,
		Phase:       string(domain.PhaseLobby),
		Modes:       modesToMessage(state.Modes),
		CurrentSeat: -1,
	}
	if state.Game != nil {
		msg.Phase = string(state.Game.Phase)
		msg.Modes = modesToMessage(state.Game.Modes)
		msg.Turn = state.Game.Turn
		msg.CurrentSeat = int(state.Game.Current)
		msg.BagSize = len(state.Game.Bag)
	}

	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if agent, exists := state.Bots[userId]; exists {
			displayName = agent.Name
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		player := wire.PlayerState{
			UserID:      userId,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       state.isBotUserId(userId),
			DisplayName: displayName,
		}
		if state.Game != nil {
			player.Score = state.Game.Players[i].Score
			player.TilesRemaining = len(state.Game.Players[i].Hand)
		}
		msg.Players = append(msg.Players, player)
	}

	dispatcher.BroadcastMessage(OpMatchState, msg.Marshal(), nil, nil, true)
}

// broadcastSnapshots sends every connected seat its own view of the board.
func (mh *matchHandler) broadcastSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		return
	}
	for i, userId := range state.Seats {
		presence, ok := state.Presences[userId]
		if userId == "" || !ok {
			continue
		}
		data := wire.MarshalSnapshot(viewFor(state.Game, domain.Side(i)))
		if err := dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{presence}, nil, true); err != nil {
			logger.Warn("broadcastSnapshots: Failed to send to %s: %v", userId, err)
		}
	}
}

// senderSeat resolves the seat of a message sender, replying with an error
// when the sender is not seated or no deal exists.
func (mh *matchHandler) senderSeat(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, op string) (domain.Side, bool) {
	senderID := msg.GetUserId()
	side, seated := state.seatOf(senderID)
	if !seated {
		logger.Warn("%s: User %s is not seated.", op, senderID)
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated")
		return 0, false
	}
	if state.Game == nil {
		logger.Warn("%s: Game not started.", op)
		mh.sendError(state, dispatcher, logger, senderID, 409, app.ErrNotPlaying.Error())
		return 0, false
	}
	return side, true
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	side, seated := state.seatOf(senderID)
	senderSeat := -1
	if seated {
		senderSeat = int(side)
	}

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.inProgress() {
		logger.Warn("StartGame: A game is already in progress.")
		mh.sendError(state, dispatcher, logger, senderID, 409, "game already in progress")
		return
	}
	if activeCount := state.GetOccupiedSeatCount(); activeCount < app.Seats {
		logger.Warn("StartGame: Cannot start with %d players. Need %d.", activeCount, app.Seats)
		return
	}

	game, events := state.App.NewGame(state.Modes)
	state.Game = game
	mh.cancelBots(state)

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(state, dispatcher, logger, events)

	logger.Info("StartGame: Game started (%s/%s).", state.Modes.Game, state.Modes.Placement)
}

func (mh *matchHandler) handlePlaceTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	side, ok := mh.senderSeat(state, dispatcher, logger, msg, "handlePlaceTile")
	if !ok {
		return
	}
	placement, err := decodePlaceTile(msg.GetData())
	if err != nil {
		logger.Warn("handlePlaceTile: %v", err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	if err := state.App.PlaceTile(state.Game, side, placement); err != nil {
		logger.Debug("handlePlaceTile: User %s (seat %d) failed to place %+v: %v", msg.GetUserId(), side, placement, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), errorCode(err), err.Error())
		return
	}
	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) handleRecallTiles(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	side, ok := mh.senderSeat(state, dispatcher, logger, msg, "handleRecallTiles")
	if !ok {
		return
	}
	if err := state.App.RecallTiles(state.Game, side); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), errorCode(err), err.Error())
		return
	}
	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) handleCommitMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	side, ok := mh.senderSeat(state, dispatcher, logger, msg, "handleCommitMove")
	if !ok {
		return
	}
	events, err := state.App.CommitMove(state.Game, side)
	if err != nil {
		logger.Warn("handleCommitMove: User %s (seat %d) failed to commit: %v", msg.GetUserId(), side, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), errorCode(err), err.Error())
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	side, ok := mh.senderSeat(state, dispatcher, logger, msg, "handlePassTurn")
	if !ok {
		return
	}
	events, err := state.App.PassTurn(state.Game, side)
	if err != nil {
		logger.Warn("handlePassTurn: User %s (seat %d) failed to pass turn: %v", msg.GetUserId(), side, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), errorCode(err), err.Error())
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// handleSetModes changes the modes. A running deal is restarted under the new modes.
func (mh *matchHandler) handleSetModes(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if side, seated := state.seatOf(senderID); !seated || int(side) != state.OwnerSeat {
		logger.Warn("SetModes: User %s is not the owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can change modes")
		return
	}
	modes, err := decodeModes(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Modes = modes
	if !state.inProgress() {
		mh.broadcastMatchState(state, dispatcher, logger)
		return
	}

	events := state.App.SetModes(state.Game, modes)
	if len(events) == 0 {
		return
	}
	mh.cancelBots(state)
	logger.Info("SetModes: Game reset to %s/%s by %s.", modes.Game, modes.Placement, senderID)
	mh.dispatchEvents(state, dispatcher, logger, events)
}

// dispatchEvents sends events followed by fresh snapshots and match state.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	ended := false
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
		if ev.Kind == app.EventGameEnded {
			ended = true
		}
	}
	mh.broadcastSnapshots(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
	if ended {
		mh.updateLabel(state, dispatcher, logger)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, bytes, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, side := range ev.Recipients {
			if p, ok := state.Presences[state.Seats[side]]; ok {
				recipients = append(recipients, p)
			}
		}

		// Intended recipients that are not connected (bots) must not turn into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := &wire.GameErrorEvent{Code: code, Message: message}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, payload.Marshal(), []runtime.Presence{presence}, nil, true)
}

// errorCode maps app refusals onto HTTP-like status codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return 403
	case errors.Is(err, app.ErrNotPlaying):
		return 409
	case errors.Is(err, app.ErrInvalidPlacement), errors.Is(err, app.ErrNoResolution):
		return 422
	default:
		return 400
	}
}

func (mh *matchHandler) buildLabel(state *MatchState) (string, error) {
	phase := string(domain.PhaseLobby)
	modes := state.Modes
	if state.inProgress() {
		phase = string(domain.PhasePlaying)
		modes = state.Game.Modes
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"game":                  MatchLabelGame,
		"phase":                 phase,
		"game_mode":             modes.Game.String(),
		"placement_mode":        modes.Placement.String(),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := protojson.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
