package locale

// Strings holds every user-visible text for one locale.
type Strings struct {
	Welcome       string
	LimitReached  string
	BuyButton     string
	MenuButton    string
	AskPayment    string
	AskSupport    string
	SupportAck    string
	PaymentThanks string
	GenericError  string
}

// Catalog returns the string set for the given locale code, resolving
// unknown codes to the default locale.
func Catalog(code string) Strings {
	if s, ok := catalog[code]; ok {
		return s
	}
	return catalog[DefaultLocale]
}

var catalog = map[string]Strings{
	"tr": {
		Welcome:       "🇹🇷 Merhaba! Ben senin Türkçe AI asistanınım. İlk 10 mesaj — ücretsiz.",
		LimitReached:  "Ücretsiz mesaj sınırına ulaşıldı.",
		BuyButton:     "Erişim satın al 🔓",
		MenuButton:    "Mesaj yaz",
		AskPayment:    "Ödeme sorununu açıklayın",
		AskSupport:    "Sorununuzu açıklayın",
		SupportAck:    "Teşekkürler! Mesajınız destek ekibine iletildi.",
		PaymentThanks: "✅ Ödeme tamamlandı. Satın aldığınız için teşekkürler!",
		GenericError:  "Bağlantı hatası. Lütfen daha sonra tekrar deneyin.",
	},
	"id": {
		Welcome:       "🇮🇩 Hai! Saya asisten AI pertamamu dalam Bahasa Indonesia. 10 pesan pertama — gratis.",
		LimitReached:  "Batas pesan gratis telah tercapai.",
		BuyButton:     "Beli akses 🔓",
		MenuButton:    "Tulis pesan",
		AskPayment:    "Jelaskan masalah pembayaran Anda",
		AskSupport:    "Jelaskan pertanyaan Anda",
		SupportAck:    "Terima kasih! Pesan Anda telah diteruskan ke tim dukungan.",
		PaymentThanks: "✅ Pembayaran berhasil. Terima kasih atas pembelian Anda!",
		GenericError:  "Gangguan koneksi. Silakan coba lagi nanti.",
	},
	"ar": {
		Welcome:       "🇦🇪 أهلاً! أنا مساعد الذكاء الاصطناعي الأول باللغة العربية. أول 10 رسائل مجاناً.",
		LimitReached:  "تم استهلاك الحد الأقصى للرسائل المجانية.",
		BuyButton:     "🔓 شراء الوصول",
		MenuButton:    "اكتب رسالة",
		AskPayment:    "صف مشكلتك في الدفع",
		AskSupport:    "صف سؤالك",
		SupportAck:    "شكراً! تم إرسال رسالتك إلى فريق الدعم.",
		PaymentThanks: "✅ تمت عملية الدفع بنجاح! شكراً لشرائك.",
		GenericError:  "خطأ في الاتصال. حاول مرة أخرى لاحقاً.",
	},
	"vi": {
		Welcome:       "🇻🇳 Xin chào! Tôi là trợ lý AI đầu tiên bằng tiếng Việt. 10 tin nhắn đầu tiên miễn phí.",
		LimitReached:  "Bạn đã sử dụng hết số tin nhắn miễn phí.",
		BuyButton:     "Mua quyền truy cập 🔓",
		MenuButton:    "Viết tin nhắn",
		AskPayment:    "Hãy mô tả vấn đề thanh toán của bạn",
		AskSupport:    "Hãy mô tả câu hỏi của bạn",
		SupportAck:    "Cảm ơn! Tin nhắn của bạn đã được chuyển đến đội hỗ trợ.",
		PaymentThanks: "✅ Thanh toán thành công! Cảm ơn bạn đã mua.",
		GenericError:  "Lỗi kết nối. Vui lòng thử lại sau.",
	},
	"pt": {
		Welcome:       "🇧🇷 Olá! Sou seu primeiro assistente de IA em português. Primeiras 10 mensagens grátis.",
		LimitReached:  "Limite de mensagens gratuitas atingido.",
		BuyButton:     "Comprar acesso 🔓",
		MenuButton:    "Escreva uma mensagem",
		AskPayment:    "Descreva seu problema com o pagamento",
		AskSupport:    "Descreva sua dúvida",
		SupportAck:    "Obrigado! Sua mensagem foi encaminhada ao suporte.",
		PaymentThanks: "✅ Pagamento concluído com sucesso! Obrigado pela compra.",
		GenericError:  "Erro de conexão. Tente novamente mais tarde.",
	},
	"en": {
		Welcome:       "Hello! I'm your AI assistant. The first 10 messages are free.",
		LimitReached:  "Free message limit exceeded.",
		BuyButton:     "Buy access 🔓",
		MenuButton:    "Write a message",
		AskPayment:    "Describe your payment issue",
		AskSupport:    "Describe your question",
		SupportAck:    "Thanks! Your message has been forwarded to support.",
		PaymentThanks: "✅ Payment completed successfully! Thank you for your purchase.",
		GenericError:  "Connection error. Please try again later.",
	},
	"ru": {
		Welcome:       "Привет! Я твой ИИ помощник. Первые 10 сообщений — бесплатно.",
		LimitReached:  "Лимит бесплатных сообщений исчерпан.",
		BuyButton:     "Купить доступ 🔓",
		MenuButton:    "Напиши сообщение",
		AskPayment:    "Опишите проблему с оплатой",
		AskSupport:    "Опишите ваш вопрос",
		SupportAck:    "Спасибо! Ваше сообщение передано в поддержку.",
		PaymentThanks: "✅ Оплата успешно завершена! Спасибо за покупку.",
		GenericError:  "Ошибка подключения. Попробуйте позже.",
	},
}
