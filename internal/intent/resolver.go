// Package intent resolves one customer message into at most one reply. The
// resolver walks a fixed stage order so that structured handlers (account
// help, data lookups, payment flows) always win over the generated fallback,
// and off-topic handling only fires when nothing else claimed the message.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/goodcasino/livecare/internal/classifier"
	"github.com/goodcasino/livecare/internal/flow"
	"github.com/goodcasino/livecare/internal/gamedata"
	"github.com/goodcasino/livecare/internal/promo"
	"github.com/goodcasino/livecare/internal/state"
	"github.com/goodcasino/livecare/internal/topic"
)

// Stock apology replies for data-store failures.
const (
	PromoErrorReply = "Maaf bosku, terjadi kendala saat menampilkan promo. Coba lagi sebentar ya. 🙏"
	RTPErrorReply   = "Maaf bosku, terjadi kendala saat menampilkan RTP. Coba lagi sebentar ya. 🙏"
)

// Classifier is the LLM surface the resolver consumes.
type Classifier interface {
	ClassifyIntents(ctx context.Context, message string) classifier.Intents
	GenerateReply(ctx context.Context, req classifier.GenerateRequest) (classifier.Generated, error)
}

var (
	greetingPattern = regexp.MustCompile(`(?i)^\s*(halo+|hai+|hello+|hi+|hay|helo|selamat\s+(pagi|siang|sore|malam)|pagi|siang|sore|malam|assalamualaikum)\b`)
	rawDataPattern  = regexp.MustCompile(`(?i)\b(json|raw)\b`)

	promoDetailsPattern = regexp.MustCompile(`(?i)\b(details?|more|info|terms?|conditions?|syarat|ketentuan|eligible|games?)\b`)

	accountChangePattern = regexp.MustCompile(`(?i)\b(ganti|ubah|tukar|perbarui|update|change|switch)\s+(rekening|akun|account)\b`)
	userIDChangePattern  = regexp.MustCompile(`(?i)\b(ganti|ubah|change|update)\b.*\b(user\s*id|userid|username|id)\b`)
	newAccountPattern    = regexp.MustCompile(`(?i)(buat|daftar|register|create|make|bikin)\s+(akun|account)|\bnew\s+(account|userid|user\s*id)\b`)
	validUserIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

	transferPattern = regexp.MustCompile(`(?i)(sambungkan|hubungkan|transfer)\b.*\b(cs|agen|agent|admin|operator|manusia)|bicara\s+(dengan|sama)\s+(cs|agen|agent|admin|manusia|orang)`)
	gameListPattern = regexp.MustCompile(`(?i)(daftar|list|jenis|macam|apa\s+saja|apa\s+aja)\b.*\b(game|permainan|slot)|\b(game|permainan)\s+apa\b`)

	bankInfoPattern = regexp.MustCompile(`(?i)(bank|rekening)[^a-z0-9]{0,6}(apa|mana|yang\s+didukung|yang\s+diterima)|(which|what)\s+banks?\s+(are\s+)?(supported|accepted)|(bisa|dapat|boleh)\s+(transfer|tf)\s+dari\s+bank`)

	passwordIssuePattern     = regexp.MustCompile(`(?i)(lupa|forgot|reset|ganti|change|hilang|lost)\s+(password|sandi|pin)`)
	accountAccessPattern     = regexp.MustCompile(`(?i)(akun|account|login|masuk)\s+(terkunci|diblokir|suspended|banned|hacked|terblokir)`)
	verificationIssuePattern = regexp.MustCompile(`(?i)verif|otp|kode\s+verifikasi|kode\s+otp`)
	securityConcernPattern   = regexp.MustCompile(`(?i)scam|phishing|penipuan|tertipu|hacked|diretas`)

	supportPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(lupa|forgot|reset|ganti|change|hilang|lost)\s+(password|sandi|akun|account|email|user\s*id|pin)`),
		regexp.MustCompile(`(?i)(account|akun|login|masuk|email|user\s*id|password|sandi|pin)\s+(terkunci|diblokir|suspended|banned|hacked|terblokir|error|gagal|tidak\s+bisa|hilang|not\s+found)`),
		regexp.MustCompile(`(?i)(verif(y|ikasi)|otp|kode\s+verifikasi|kode\s+otp)\s+(tidak\s+masuk|gagal|error|tidak\s+terkirim|not\s+received)`),
		regexp.MustCompile(`(?i)scam|phishing|penipuan|tertipu|hacked|diretas|keamanan\s+akun|account\s+security`),
		regexp.MustCompile(`(?i)pemulihan\s+akun|recovery\s+account|akun\s+hilang|tidak\s+bisa\s+masuk|gagal\s+login|login\s+error`),
	}
)

var supportKeywords = []string{
	"reset password", "lupa password", "password hilang", "forgot password",
	"ganti password", "change password", "password tidak bisa", "password error",
	"akun terkunci", "akun diblokir", "akun kena suspend", "akun kena banned",
	"ganti email", "change email", "email tidak terdaftar", "email tidak masuk",
	"verifikasi akun", "akun belum terverifikasi", "verifikasi email",
	"ganti nomor hp", "change phone number", "nomor hp tidak terdaftar",
	"user id tidak bisa login",
	"akun diretas", "hacked account", "saya diretas",
	"saya kena scam", "tertipu", "penipuan", "fraud", "scam", "phishing",
	"kode otp tidak masuk", "otp tidak terkirim", "verifikasi gagal",
	"ganti pin", "lupa pin", "pin tidak bisa", "pin error",
	"pemulihan akun", "recovery account", "akun saya hilang",
	"tidak bisa login", "login error", "gagal login", "tidak bisa masuk",
	"akun tidak dikenal", "akun tidak ditemukan",
}

var promoKeywords = []string{"promo", "promosi", "bonus", "diskon", "hadiah", "hadia"}

var rtpKeywords = []string{"rtp", "return to player", "gacor"}

var bankInfoPhrases = []string{
	"bank apa saja", "bank apa aja", "bank apa", "bank diterima", "bank yg diterima",
	"bank yang diterima", "terima bank apa", "menerima bank apa", "support bank",
	"bisa transfer dari bank", "bisa tf dari", "tf dari bank", "rekening bank apa",
	"daftar bank", "list bank", "which banks", "what banks do you accept",
	"accepted banks", "supported banks",
}

var frustrationKeywords = []string{
	"mad", "angry", "frustrated", "upset", "annoyed", "pissed",
	"marah", "kesal", "jengkel", "sebel",
}

var losingKeywords = []string{
	"lose", "losing", "lost", "lsoe", "kalah", "rugi", "loss",
	"always lose", "keep losing", "never win", "selalu kalah", "terus kalah",
	"tidak pernah menang",
}

// Deps are the resolver collaborators.
type Deps struct {
	Classifier Classifier
	Promos     *promo.Store
	RTP        *gamedata.RTPStore
	Games      *gamedata.GameStore
	Brand      *gamedata.BrandStore
	Notifier   flow.Notifier
	Deposit    *flow.Engine
	Withdraw   *flow.Engine

	// OffTopicThreshold <= 0 falls back to topic.DefaultThreshold.
	OffTopicThreshold int
	// RandIndex picks template variants; nil means index 0 (deterministic).
	RandIndex func(n int) int
}

// Resolver turns one customer message into at most one reply.
type Resolver struct {
	deps   Deps
	logger *slog.Logger
}

// NewResolver builds the resolver.
func NewResolver(log *slog.Logger, deps Deps) *Resolver {
	if deps.RandIndex == nil {
		deps.RandIndex = func(int) int { return 0 }
	}
	return &Resolver{
		deps:   deps,
		logger: log.With(slog.String("service", "intent")),
	}
}

// Resolve runs the stage pipeline. An empty return means stay silent. The
// caller owns duplicate suppression and history recording for the reply.
func (r *Resolver) Resolve(ctx context.Context, conv *state.Conversation, message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)

	if reply, handled := r.handleAccountChange(ctx, conv, trimmed, lower); handled {
		return reply
	}
	if reply, handled := r.handleAccountRequests(ctx, conv, trimmed, lower); handled {
		return reply
	}

	intents := r.deps.Classifier.ClassifyIntents(ctx, trimmed)
	isPromo := intents.IsPromotionQuery || containsAny(lower, promoKeywords)
	isRTP := intents.IsRTPQuery || containsAny(lower, rtpKeywords)

	if rawDataPattern.MatchString(lower) {
		if reply, handled := r.handleRawData(conv, isPromo, isRTP); handled {
			return reply
		}
	}
	if isPromo {
		return r.promoReply(conv, trimmed)
	}
	if conv.IsDiscussingPromos && promoDetailsPattern.MatchString(trimmed) {
		return r.promoDetailsReply()
	}
	if isRTP {
		return r.rtpReply()
	}
	if isBankInfoQuery(trimmed, lower) {
		return gamedata.FormatBankList()
	}
	if reply, handled := r.handleSupportEscalation(ctx, conv, trimmed, lower); handled {
		return reply
	}

	depositTriggered := flow.IsDepositInquiry(trimmed)
	if conv.Deposit.Active || depositTriggered {
		result := r.deps.Deposit.Handle(ctx, conv.ChatID, &conv.Deposit, trimmed, depositTriggered)
		if result.Completed {
			conv.UserID = result.UserID
			conv.DepositAmount = result.Amount
			conv.LastDepositCheck = &state.DepositCheck{UserID: result.UserID, Amount: result.Amount}
		}
		if result.Reply != "" {
			return result.Reply
		}
	}
	withdrawTriggered := flow.IsWithdrawInquiry(trimmed)
	if conv.Withdraw.Active || withdrawTriggered {
		result := r.deps.Withdraw.Handle(ctx, conv.ChatID, &conv.Withdraw, trimmed, withdrawTriggered)
		if result.Completed {
			conv.UserID = result.UserID
		}
		if result.Reply != "" {
			return result.Reply
		}
	}

	if (intents.WantsTransferToAgent || transferPattern.MatchString(trimmed)) && !conv.HasSentTransferNotice {
		conv.HasSentTransferNotice = true
		return TransferNotice
	}
	if intents.IsGameListQuery || gameListPattern.MatchString(trimmed) {
		return fmt.Sprintf("*Daftar Permainan yang Tersedia* 🎮\n\n%s\n\nAda yang bisa saya bantu lagi bosku? 😊",
			gamedata.FormatGameList(r.deps.Games.Games()))
	}

	score := topic.Score(trimmed, r.deps.OffTopicThreshold)
	if (containsAny(lower, frustrationKeywords) || containsAny(lower, losingKeywords)) && !score.OffTopic {
		return LosingEncouragement
	}
	if score.OffTopic {
		return r.offTopicReply(conv, trimmed, score)
	}

	if greetingPattern.MatchString(trimmed) {
		if conv.HasSentWelcome {
			return RepeatGreetingReply
		}
		conv.HasSentWelcome = true
		return WelcomeMessage(r.deps.Brand.Name())
	}
	if !conv.HasSentWelcome && len(conv.History) <= 1 {
		conv.HasSentWelcome = true
		return WelcomeMessage(r.deps.Brand.Name())
	}

	return r.generatedReply(ctx, conv, trimmed)
}

// handleAccountChange runs the bank-account-change sub-flow: continuation
// first, then the trigger phrase. The support ping fires once the id is
// collected and is never mentioned to the customer.
func (r *Resolver) handleAccountChange(ctx context.Context, conv *state.Conversation, trimmed, lower string) (string, bool) {
	if conv.AccountChange.Active {
		candidate := strings.TrimSpace(trimmed)
		if extracted, ok := flow.ExtractUserID(candidate); ok {
			candidate = extracted
		}
		if !validUserIDPattern.MatchString(candidate) {
			return AccountChangeInvalidID, true
		}
		conv.UserID = candidate
		conv.AccountChange.Active = false
		if r.deps.Notifier != nil {
			r.deps.Notifier.SupportPing(ctx, "account_change", conv.ChatID, candidate, 0, trimmed)
		}
		return AccountChangeProcessing, true
	}
	// "ganti user id" belongs to the user-id-change handler, not this one.
	if accountChangePattern.MatchString(trimmed) && !userIDChangePattern.MatchString(trimmed) {
		conv.AccountChange.Active = true
		return AccountChangeAskID, true
	}
	return "", false
}

// handleAccountRequests covers user-id changes and new-account requests.
func (r *Resolver) handleAccountRequests(ctx context.Context, conv *state.Conversation, trimmed, lower string) (string, bool) {
	if userIDChangePattern.MatchString(trimmed) {
		r.silentPing(ctx, conv, "userid_change", trimmed)
		return AskCIDForUserIDChange, true
	}
	if newAccountPattern.MatchString(trimmed) {
		return AskNewAccountDetails, true
	}
	return "", false
}

func (r *Resolver) handleRawData(conv *state.Conversation, isPromo, isRTP bool) (string, bool) {
	if isRTP {
		raw, err := r.deps.RTP.Raw()
		if err != nil {
			r.logger.Warn("rtp raw read failed", slog.Any("error", err))
			return RTPErrorReply, true
		}
		return string(raw), true
	}
	if isPromo {
		promotions, err := r.deps.Promos.List()
		if err != nil {
			r.logger.Warn("promotions read failed", slog.Any("error", err))
			return PromoErrorReply, true
		}
		raw, err := json.MarshalIndent(promotions, "", "  ")
		if err != nil {
			return PromoErrorReply, true
		}
		conv.IsDiscussingPromos = true
		return string(raw), true
	}
	return "", false
}

func (r *Resolver) promoReply(conv *state.Conversation, message string) string {
	promotions, err := r.deps.Promos.List()
	if err != nil {
		r.logger.Warn("promotions read failed", slog.Any("error", err))
		return PromoErrorReply
	}
	conv.IsDiscussingPromos = true
	return promo.Format(promotions, message)
}

func (r *Resolver) promoDetailsReply() string {
	promotions, err := r.deps.Promos.List()
	if err != nil {
		r.logger.Warn("promotions read failed", slog.Any("error", err))
		return PromoErrorReply
	}
	var b strings.Builder
	for i, p := range promotions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(promo.FormatDetails(p))
	}
	return b.String()
}

func (r *Resolver) rtpReply() string {
	cfg, err := r.deps.RTP.Get()
	if err != nil {
		r.logger.Warn("rtp read failed", slog.Any("error", err))
		return RTPErrorReply
	}
	return gamedata.FormatRTPReply(cfg) + "\n\nButuh bantuan? Kasih tahu saya ya 😊"
}

// handleSupportEscalation pings the support sink silently and only asks the
// customer for their id.
func (r *Resolver) handleSupportEscalation(ctx context.Context, conv *state.Conversation, trimmed, lower string) (string, bool) {
	if !needsSupportPing(lower) {
		return "", false
	}

	issueType := "account_assistance"
	switch {
	case passwordIssuePattern.MatchString(lower):
		issueType = "password_reset"
	case accountAccessPattern.MatchString(lower):
		issueType = "account_access_issue"
	case verificationIssuePattern.MatchString(lower):
		issueType = "verification_issue"
	case securityConcernPattern.MatchString(lower):
		issueType = "security_concern"
	}

	r.silentPing(ctx, conv, issueType, trimmed)
	if issueType == "password_reset" {
		return AskCIDForPasswordReset, true
	}
	return AskCIDForSupport, true
}

func (r *Resolver) offTopicReply(conv *state.Conversation, message string, score topic.Result) string {
	conv.OffTopicWarnings++
	if err := r.deps.Games.AddOffTopicQuestion(message); err != nil {
		r.logger.Debug("off-topic question not recorded", slog.Any("error", err))
	}
	r.logger.Info("off-topic message",
		slog.String("chat_id", conv.ChatID),
		slog.String("type", score.Type),
		slog.Int("score", score.Score),
		slog.Int("warnings", conv.OffTopicWarnings),
	)
	return WarningMessage(conv.OffTopicWarnings) + pick(r.deps.RandIndex, casinoNudges)
}

// generatedReply is the last stage: ask the model, fall back to a
// clarification template when the answer is missing or unusable.
func (r *Resolver) generatedReply(ctx context.Context, conv *state.Conversation, message string) string {
	recent := make([]string, 0, len(conv.History))
	for _, entry := range conv.History {
		recent = append(recent, entry.Type+": "+entry.Message)
	}
	out, err := r.deps.Classifier.GenerateReply(ctx, classifier.GenerateRequest{
		Message:       message,
		UserID:        conv.UserID,
		Language:      conv.Language,
		RecentHistory: recent,
	})
	if err != nil {
		r.logger.Debug("generated reply unavailable", slog.Any("error", err))
		return pick(r.deps.RandIndex, clarificationTemplates)
	}
	if conv.UserID == "" && out.Context.UserID != "" && out.Context.UserID != "null" {
		conv.UserID = out.Context.UserID
	}
	return out.Reply
}

func (r *Resolver) silentPing(ctx context.Context, conv *state.Conversation, pingType, message string) {
	if r.deps.Notifier == nil {
		return
	}
	userID := conv.UserID
	if extracted, ok := flow.ExtractLabeledUserID(message); ok {
		userID = extracted
	}
	if userID == "" {
		userID = "anonymous"
	}
	r.deps.Notifier.SupportPing(ctx, pingType, conv.ChatID, userID, 0, message)
}

func isBankInfoQuery(trimmed, lower string) bool {
	for _, phrase := range bankInfoPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return bankInfoPattern.MatchString(trimmed)
}

func needsSupportPing(lower string) bool {
	for _, keyword := range supportKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	for _, pattern := range supportPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	if strings.Contains(lower, "reset") &&
		(strings.Contains(lower, "password") || strings.Contains(lower, "sandi")) &&
		!strings.Contains(lower, "link") && !strings.Contains(lower, "cara") {
		return true
	}
	return (strings.Contains(lower, "recovery") || strings.Contains(lower, "pemulihan")) &&
		(strings.Contains(lower, "account") || strings.Contains(lower, "akun"))
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
