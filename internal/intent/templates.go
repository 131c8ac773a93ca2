package intent

import "fmt"

// WelcomeMessage is the one-shot greeting for a new conversation.
func WelcomeMessage(brand string) string {
	return fmt.Sprintf("Halo bosku! 😎\nSelamat datang di %s, ada yang bisa saya bantu?", brand)
}

// RepeatGreetingReply answers a greeting after the welcome was already sent.
const RepeatGreetingReply = "Ada yang bisa saya bantu? 😊"

// TransferNotice is the one-time connecting-to-agent message.
const TransferNotice = "Baik bosku, saya akan hubungkan ke agen kami. Mohon tetap di chat ya, sebentar..."

// LosingEncouragement answers gambling frustration that is still on-topic.
const LosingEncouragement = "Santai bosku! 😊 Saya paham rasanya kalau kurang hoki hari ini. Tapi ingat, semua pemain hebat juga pernah ngalamin hal yang sama! Coba istirahat sebentar dulu, tenangkan pikiran, nanti lanjut lagi ya. 🎰 Kadang rehat sebentar adalah strategi terbaik. Semangat, bosku! 💪"

// Account assistance prompts. Support pings stay silent; the customer only
// ever sees a request for their id.
const (
	AskCIDForPasswordReset = "Baik bosku, untuk bantu reset password boleh minta User ID (CID)-nya?"
	AskCIDForSupport       = "Siap bosku, boleh minta User ID (CID)-nya?"
	AskCIDForUserIDChange  = "Baik bosku, untuk proses ganti User ID boleh minta User ID (CID)-nya?"
	AskNewAccountDetails   = "Siap bosku! Untuk buat akun baru, boleh minta Nomor HP dan User ID yang diinginkan?"
)

// Account-change (bank account) sub-flow prompts.
const (
	AccountChangeAskID      = "Baik, untuk membantu Anda mengganti rekening, saya membutuhkan User ID Anda terlebih dahulu.\n\nSilakan berikan User ID Anda: (contoh: user123)"
	AccountChangeInvalidID  = "Mohon maaf, format User ID tidak valid. User ID harus terdiri dari 3-20 karakter (huruf dan/atau angka).\n\nSilakan masukkan User ID Anda:"
	AccountChangeProcessing = "Ok, terima kasih. Tim kami akan segera memproses permintaan Anda."
)

// warningMessages escalate with the off-topic counter: tier 1, 2, then 3+.
var warningMessages = []string{
	"Saya di sini untuk membantu dengan dukungan kasino dan permainan. Bisakah Anda beri tahu apa yang ingin Anda ketahui tentang permainan atau layanan kami?",
	"Sepertinya pertanyaan Anda tidak terkait layanan kami. Saya bisa bantu informasi permainan, deposit, penarikan, atau masalah akun. Ada yang bisa saya bantu?",
	"Mari kita fokus pada dukungan kasino dan permainan. Jika ada pertanyaan tentang game, deposit, atau akun, saya siap bantu!",
}

// WarningMessage picks the escalation tier for the current warning count
// (counting from 1). Counts beyond the last tier repeat it.
func WarningMessage(warningCount int) string {
	idx := warningCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(warningMessages) {
		idx = len(warningMessages) - 1
	}
	return warningMessages[idx]
}

// casinoNudges are appended to off-topic warnings to steer the chat back.
var casinoNudges = []string{
	"\n\nNgomong-ngomong, kami punya banyak permainan seru yang mungkin Anda suka!",
	"\n\nOmong-omong, sudah coba game slot terbaru kami?",
	"\n\nSaya juga siap bantu kalau ada pertanyaan tentang permainan atau layanan kami!",
}

// clarificationTemplates replace unusable generated replies.
var clarificationTemplates = []string{
	"Ada yang bisa saya bantu lagi bosku? 😊",
	"Bosku, saya tidak paham maksudmu. Bisakah kamu jelaskan lagi? 🤔",
	"Maaf bosku, saya tidak bisa membantu dengan itu. 😊",
}

// pick selects templates[randIndex(len(templates))]; randIndex is injected
// so tests stay deterministic.
func pick(randIndex func(n int) int, templates []string) string {
	if len(templates) == 0 {
		return ""
	}
	idx := randIndex(len(templates))
	if idx < 0 || idx >= len(templates) {
		idx = 0
	}
	return templates[idx]
}
