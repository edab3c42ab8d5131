package bot

// подписи кнопок
const (
	BtnMainMenu    = "Bosh menyu"
	BtnAddOrder    = "Buyurtma qo'shish"
	BtnDeleteOrder = "Buyurtmani o'chirish"
	BtnEditClient  = "Mijoz ma'lumotlarini o'zgartirish"
	BtnListOrders  = "Buyurtmalarni ko'rish"
	BtnPay         = "To'lov qilish"
	BtnPayments    = "To'lovlar"

	BtnAddProduct = "Mahsulot qo'shish"
	BtnCartDone   = "Buyurtma yig'ildi"

	BtnYes = "Ha"
	BtnNo  = "Yo'q"

	BtnUsername     = "Username"
	BtnFirstName    = "Ism"
	BtnLastName     = "Familiya"
	BtnSavedName    = "Sistemadagi Ism"
	BtnDebt         = "Qarzi"
	BtnRole         = "Type"
	BtnDiscount     = "Chegirma"
	BtnDeleteClient = "Mijozni o'chirish"

	BtnAdmin  = "Admin"
	BtnClient = "Client"

	BtnNoComment = "Izohsiz"
)

// команды
const (
	CmdStart        = "start"
	CmdHelp         = "help"
	CmdAddOrder     = "add_order"
	CmdDeleteOrder  = "delete_order"
	CmdEditClient   = "edit_client"
	CmdListOrders   = "list_orders"
	CmdListProducts = "list_products"
	CmdPay          = "pay"
	CmdPayments     = "payments"
)

// префиксы callback-данных
const (
	cbConfirmOrder   = "confirm_order_"
	cbRejectOrder    = "reject_order_"
	cbConfirmPayment = "confirm_payment_"
	cbRejectPayment  = "reject_payment_"
)

const currency = "so'm"

const (
	txtMenu            = "Menyu"
	txtNoProfile       = "Sizning profilingiz topilmadi. Iltimos, foydalanishni boshlash uchun /start ni kiriting."
	txtFailure         = "Xatolik yuz berdi. Iltimos, keyinroq qayta urinib ko'ring."
	txtUnknownCommand  = "Noto`g`ri buyruq. Iltimos, quyidagi buyruqlardan birini tanlang:"
	txtClientsNotFound = "Mijozlar topilmadi."
	txtClientNotFound  = "Mijoz topilmadi."
	txtBadClient       = "Noto`g`ri mijoz tanlandi. Iltimos, qaytadan urinib ko`ring."
	txtChooseClient    = "Mijozni tanlang:"
	txtChooseYesNo     = "Noto`g'ri tanlov. Iltimos, 'Ha' yoki 'Yo'q' ni tanlang."
	txtClientsOnly     = "Bu buyruq faqat mijozlar uchun."

	txtDeniedAddOrder    = "Sizda buyurtma qo`shishga ruxsat yo`q."
	txtDeniedDeleteOrder = "Sizda buyurtmani o`chirishga ruxsat yo`q."
	txtDeniedEditClient  = "Sizda mijozlarni o'zgartirishga ruxsat yo`q."
	txtDenied            = "Sizda bu amal uchun ruxsat yo'q."

	txtChooseProducts   = "Buyurtma maxsulotlarini tanlang:"
	txtChooseProduct    = "Iltimos, mahsulotni tanlang yoki menyudan birini tanlang:"
	txtUnknownProduct   = "Bunday mahsulot topilmadi. Iltimos, ro'yxatdan tanlang."
	txtNewProduct       = "Yangi mahsulot nomini va narxini ko'rsatilgan tartibda kiriting.\nMasalan: Pomidor, 5000"
	txtProductAdded     = "Yangi mahsulot muvaffaqiyatli qo`shildi."
	txtProductExists    = "Bunday mahsulot allaqachon mavjud."
	txtEnterQuantity    = "Mahsulot miqdorini kiriting:"
	txtQuantityNotDigit = "Miqdor raqam bo'lishi kerak."
	txtLineAdded        = "Mahsulot qo'shildi."
	txtLineRemoved      = "Mahsulot savatdan olib tashlandi."
	txtCartUnchanged    = "Savat o'zgarmadi."
	txtQuantityTooLarge = "Miqdor juda katta. Iltimos, qaytadan kiriting."
	txtOrderTooLarge    = "Buyurtma summasi juda katta. Iltimos, miqdorni kamaytiring."
	txtCartEmpty        = "Savat bo'sh. Avval mahsulot tanlang."
	txtConfirmOrder     = "Buyurtmani tasdiqlaysizmi?"
	txtOrderCreated     = "Buyurtma muvaffaqiyatli qo`shildi."
	txtOrderCancelled   = "Buyurtma bekor qilindi."
	txtOrderGone        = "Mijoz yoki mahsulot topilmadi. Buyurtma saqlanmadi."
	txtNewOrderForYou   = "Sizga yangi buyurtma qo'shildi. Iltimos, tasdiqlang."

	txtChooseOrderToDelete = "O'chirish uchun buyurtmani tanlang:"
	txtClientHasNoOrders   = "Mijozda buyurtmalar topilmadi."
	txtBadOrder            = "Noto`g`ri buyurtma tanlandi. Iltimos, ro'yxatdan tanlang."

	txtChooseField      = "Qaysi maydonni o'zgartirish?"
	txtBadField         = "Noto`g`ri tanlov. Iltimos, ro'yxatdan maydonni tanlang."
	txtChooseRole       = "Mijoz typeni tanlang:"
	txtBadDebt          = "Qarzni noto`g`ri kiritdingiz. Iltimos, qaytadan kiriting."
	txtBadRole          = "Typeni noto`g`ri kiritdingiz. Iltimos, qaytadan kiriting."
	txtEnterDiscount    = "Chegirmani kiriting. Masalan: 10% yoki 5000"
	txtBadDiscount      = "Chegirmani noto'g'ri kiritdingiz. Masalan: 10% yoki 5000"
	txtClientKept       = "Mijoz o'chirilmaydi."
	txtYouWereDeleted   = "Sizning profilingiz o'chirildi. Bottan foydalanish uchun /start ni kiriting."
	txtEnterPayment     = "To'lov summasini kiriting:"
	txtPaymentNotDigit  = "Summa raqam bo'lishi kerak."
	txtPaymentNotPos    = "Summa musbat bo'lishi kerak."
	txtAmountTooLarge   = "Summa juda katta. Iltimos, qaytadan kiriting."
	txtEnterComment     = "To'lov uchun izoh kiriting:"
	txtPaymentSubmitted = "To'lov qabul qilindi va administrator tasdig'ini kutmoqda."
	txtNoPending        = "Tasdiqlanmagan to'lovlar yo'q."

	txtOrderConfirmed    = "Buyurtma tasdiqlandi."
	txtAlreadyConfirmed  = "Buyurtma allaqachon tasdiqlangan."
	txtNotYourOrder      = "Bu buyurtma sizga tegishli emas."
	txtOrderRejected     = "Buyurtma rad etildi. Administrator bilan bog'laning."
	txtPaymentDone       = "To'lov allaqachon tasdiqlangan."
	txtUnknownAction     = "Noma'lum amal."
	txtOrdersNotFound    = "Buyurtmalar topilmadi."
	txtOwnOrdersNotFound = "Sizning buyurtmalaringiz topilmadi."
	txtListProductsUsage = "Buyurtma ID ni kiritish kerak. Masalan: /list_products 1"
)
