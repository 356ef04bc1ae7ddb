// Package i18n holds the desk's message catalog. Keys are English message
// identifiers; English and Arabic translations are registered at init.
package i18n

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"partsdesk/internal/domain"
)

type Key = string

const (
	ViewNewEntry      Key = "view.new_entry"
	ViewNewRequests   Key = "view.new_requests"
	ViewOrdered       Key = "view.ordered_waiting"
	ViewReceived      Key = "view.received"
	ViewToday         Key = "view.today"
	ViewMonth         Key = "view.month"
	FormTitleNew      Key = "form.title.new"
	FormTitleEdit     Key = "form.title.edit"
	FormTitleReorder  Key = "form.title.reorder"
	EditingRequest    Key = "form.editing"
	ReorderReady      Key = "form.reorder_ready"
	FillRequired      Key = "form.fill_required"
	SavingInProgress  Key = "form.saving"
	ErrorSaving       Key = "form.error_saving"
	ServerError       Key = "form.server_error"
	PhotoTooLarge     Key = "photo.too_large"
	PhotoReadError    Key = "photo.read_error"
	PhotoWillBeRemove Key = "photo.will_be_removed"
	PhotoPreviewError Key = "photo.preview_error"
	SelectCategory    Key = "category.select"
	LoadingCategories Key = "category.loading"
	NoCategoriesAll   Key = "category.none_defined"
	NoCategoriesOwn   Key = "category.none_for_sector"
	LoadingData       Key = "table.loading"
	NoDataAvailable   Key = "table.no_data_received"
	NoDataToDisplay   Key = "table.empty"
	ErrorLoadingData  Key = "table.error_loading"
	Actions           Key = "table.actions"
	NoActions         Key = "table.no_actions"
	PrintDate         Key = "table.print_date"
	ConfirmDelete     Key = "action.confirm_delete"
	ErrorDeleting     Key = "action.error_deleting"
	ErrorFetchEdit    Key = "action.error_fetch_edit"
	ErrorFetchOrder   Key = "action.error_fetch_order"
	ErrorFetchReceipt Key = "action.error_fetch_reception"
	ErrorFetchReorder Key = "action.error_fetch_reorder"
	SupervisorOnly    Key = "action.supervisor_only"
	NotAllowed        Key = "action.not_allowed"
	ErrorConfirmOrder Key = "action.error_confirm_order"
	ErrorConfirmRecv  Key = "action.error_confirm_reception"
	QuantityRequired  Key = "dialog.quantity_required"
	OrderedQtyLabel   Key = "dialog.ordered_qty"
	ReceivedQtyLabel  Key = "dialog.received_qty"
	CategoriesDenied  Key = "category.denied"
	ExportDenied      Key = "export.denied"
	StatusNew         Key = "status.new"
	StatusOrdered     Key = "status.ordered"
	StatusReceived    Key = "status.received"
	DialogOrderTitle  Key = "dialog.order_title"
	DialogRecvTitle   Key = "dialog.reception_title"
	RequestedQtyRef   Key = "dialog.requested_qty"
	OrderedQtyRef     Key = "dialog.ordered_qty_reference"
	FieldRequired     Key = "form.field_required"
	UnknownCommand    Key = "console.unknown_command"
)

// Column header keys, indexed by domain column position.
var columnKeys = [domain.RowColumns]Key{
	"col.id", "col.sector", "col.category", "col.description", "col.requested_qty",
	"col.unit", "col.notes", "col.photo", "col.ordered_qty", "col.received_qty",
	"col.status", "col.date", "col.time", "col.username",
}

var actionKeys = map[domain.Action]Key{
	domain.ActionEdit:             "action.edit",
	domain.ActionDelete:           "action.delete",
	domain.ActionConfirmOrder:     "action.confirm_order",
	domain.ActionConfirmReception: "action.confirm_reception",
	domain.ActionReorder:          "action.reorder",
}

type entry struct {
	key    Key
	en, ar string
}

var entries = []entry{
	{ViewNewEntry, "New entry", "إدخال جديد"},
	{ViewNewRequests, "New requests", "طلبات جديدة"},
	{ViewOrdered, "Ordered, awaiting delivery", "طلبات قيد التوصيل"},
	{ViewReceived, "Received requests", "الطلبات المستلمة"},
	{ViewToday, "Today's entries", "إدخالات اليوم"},
	{ViewMonth, "This month's entries", "إدخالات الشهر"},
	{FormTitleNew, "New spare part request", "نموذج طلب قطعة غيار جديدة"},
	{FormTitleEdit, "Edit spare part request", "تعديل طلب قطعة غيار"},
	{FormTitleReorder, "Reorder spare part", "إعادة طلب قطعة غيار"},
	{EditingRequest, "You are editing request no. %d", "أنت تقوم بتعديل الطلب رقم: %d"},
	{ReorderReady, "Reorder form is ready. Please review the quantity and other details.", "نموذج جاهز لإعادة الطلب. يرجى مراجعة الكمية والتفاصيل الأخرى."},
	{FillRequired, "Please fill in all required fields marked (*).", "يرجى ملء جميع الحقول المطلوبة ذات العلامة (*)."},
	{SavingInProgress, "Saving...", "جاري الحفظ..."},
	{ErrorSaving, "Could not save the request.", "تعذر حفظ الطلب."},
	{ServerError, "Could not reach the server.", "فشل في الاتصال بالخادم."},
	{PhotoTooLarge, "The file is too large. The maximum is %s.", "حجم الملف كبير جداً. الحد الأقصى %s."},
	{PhotoReadError, "An error occurred while reading the file.", "حدث خطأ أثناء قراءة الملف."},
	{PhotoWillBeRemove, "The current photo will be removed on save.", "سيتم إزالة الصورة الحالية عند الحفظ."},
	{PhotoPreviewError, "Could not display the thumbnail. Open the image directly: %s", "تعذر عرض الصورة المصغرة. افتح الصورة مباشرة: %s"},
	{SelectCategory, "Select category...", "اختر الفئة..."},
	{LoadingCategories, "Loading categories...", "جاري تحميل الفئات..."},
	{NoCategoriesAll, "No categories are defined in the system.", "لا توجد فئات معرفة في النظام."},
	{NoCategoriesOwn, "No categories for this sector.", "لا توجد فئات لهذا القسم."},
	{LoadingData, "Loading data...", "جاري تحميل البيانات..."},
	{NoDataAvailable, "No data received from server.", "لم يتم استلام بيانات من الخادم."},
	{NoDataToDisplay, "No data to display.", "لا توجد بيانات لعرضها حالياً."},
	{ErrorLoadingData, "Failed to load data.", "فشل تحميل البيانات."},
	{Actions, "Actions", "إجراءات"},
	{NoActions, "-", "-"},
	{PrintDate, "Print date", "تاريخ الطباعة"},
	{ConfirmDelete, "Delete request no. %d? This cannot be undone.", "هل أنت متأكد من رغبتك في حذف هذا الطلب رقم %d؟ هذا الإجراء لا يمكن التراجع عنه."},
	{ErrorDeleting, "Failed to delete the request: %s", "فشل حذف الطلب: %s"},
	{ErrorFetchEdit, "Failed to fetch the request for editing: %s", "فشل في جلب بيانات الطلب للتحرير: %s"},
	{ErrorFetchOrder, "Failed to fetch the request: %s", "فشل جلب بيانات الطلب: %s"},
	{ErrorFetchReceipt, "Failed to fetch the request: %s", "فشل جلب بيانات الطلب: %s"},
	{ErrorFetchReorder, "Failed to fetch the request for reordering: %s", "فشل في جلب بيانات الطلب لإعادة الطلب: %s"},
	{SupervisorOnly, "Only a supervisor can confirm orders.", "فقط المشرف يمكنه تأكيد الطلبات."},
	{NotAllowed, "This action is not available for request no. %d.", "هذا الإجراء غير متاح للطلب رقم %d."},
	{ErrorConfirmOrder, "Failed to confirm the order: %s", "فشل تأكيد الطلب: %s"},
	{ErrorConfirmRecv, "Failed to confirm reception: %s", "فشل تأكيد الاستلام: %s"},
	{QuantityRequired, "Enter a quantity greater than zero.", "أدخل كمية أكبر من صفر."},
	{OrderedQtyLabel, "Confirmed order quantity", "الكمية المؤكدة"},
	{ReceivedQtyLabel, "Actual received quantity", "الكمية المستلمة فعلياً"},
	{CategoriesDenied, "Only supervisors can manage categories.", "فقط المشرف يمكنه إدارة الفئات."},
	{ExportDenied, "Only supervisors can print or export tables.", "فقط المشرف يمكنه طباعة الجداول."},
	{StatusNew, "New Request", "طلب جديد"},
	{StatusOrdered, "Ordered and Waiting for Delivery", "تم الطلب وبانتظار التوصيل"},
	{StatusReceived, "Received", "مستلم"},
	{DialogOrderTitle, "Confirm order for request no. %d", "تأكيد الطلب رقم %d"},
	{DialogRecvTitle, "Confirm reception for request no. %d", "تأكيد استلام الطلب رقم %d"},
	{RequestedQtyRef, "Requested quantity", "الكمية المطلوبة"},
	{OrderedQtyRef, "Ordered quantity", "الكمية المطلوبة المؤكدة"},
	{FieldRequired, "This field is required.", "هذا الحقل مطلوب."},
	{UnknownCommand, "Unknown command: %s", "أمر غير معروف: %s"},
	{"col.id", "No.", "الرقم"},
	{"col.sector", "Sector", "القسم"},
	{"col.category", "Category", "الفئة"},
	{"col.description", "Description", "الوصف"},
	{"col.requested_qty", "Requested qty", "الكمية المطلوبة"},
	{"col.unit", "Unit", "الوحدة"},
	{"col.notes", "Notes", "ملاحظات"},
	{"col.photo", "Photo", "الصورة"},
	{"col.ordered_qty", "Ordered qty", "الكمية المؤكدة"},
	{"col.received_qty", "Received qty", "الكمية المستلمة"},
	{"col.status", "Status", "الحالة"},
	{"col.date", "Date", "التاريخ"},
	{"col.time", "Time", "الوقت"},
	{"col.username", "User", "المستخدم"},
	{"action.edit", "Edit", "تعديل"},
	{"action.delete", "Delete", "حذف"},
	{"action.confirm_order", "Confirm order", "تأكيد الطلب"},
	{"action.confirm_reception", "Confirm reception", "تأكيد الاستلام"},
	{"action.reorder", "Reorder", "إعادة طلب"},
}

var (
	builder = catalog.NewBuilder(catalog.Fallback(language.English))

	statusKeys = map[domain.Status]Key{
		domain.StatusNew:      StatusNew,
		domain.StatusOrdered:  StatusOrdered,
		domain.StatusReceived: StatusReceived,
	}

	// labelIndex maps every known display label, in every language, to its status.
	labelIndex = map[string]domain.Status{}
)

func init() {
	for _, e := range entries {
		_ = builder.SetString(language.English, e.key, e.en)
		_ = builder.SetString(language.Arabic, e.key, e.ar)
	}
	for st, key := range statusKeys {
		for _, e := range entries {
			if e.key == key {
				labelIndex[normalize(e.en)] = st
				labelIndex[normalize(e.ar)] = st
			}
		}
		labelIndex[normalize(string(st))] = st
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Localizer renders catalog messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for locale ("ar" or "en"); unknown locales get English.
func New(locale string) *Localizer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

// T renders key with optional arguments.
func (l *Localizer) T(key Key, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Locale returns the base language code.
func (l *Localizer) Locale() string {
	base, _ := l.tag.Base()
	return base.String()
}

// RightToLeft reports whether tables should be laid out right to left.
func (l *Localizer) RightToLeft() bool {
	return l.Locale() == "ar"
}

// StatusLabel is the display label of a status.
func (l *Localizer) StatusLabel(st domain.Status) string {
	if key, ok := statusKeys[st]; ok {
		return l.T(key)
	}
	return string(st)
}

// Column is the header of a listing column.
func (l *Localizer) Column(col int) string {
	if col < 0 || col >= len(columnKeys) {
		return ""
	}
	return l.T(columnKeys[col])
}

// ActionLabel is the button label of a row action.
func (l *Localizer) ActionLabel(a domain.Action) string {
	if key, ok := actionKeys[a]; ok {
		return l.T(key)
	}
	return string(a)
}

// PhotoTooLarge renders the oversize message with a human-readable limit.
func (l *Localizer) PhotoTooLarge(limit int64) string {
	return l.T(PhotoTooLarge, humanize.IBytes(uint64(limit)))
}

// ResolveStatus maps a display label from any catalog language, or a raw
// status code, to its status. It satisfies domain.StatusResolver.
func ResolveStatus(label string) (domain.Status, bool) {
	st, ok := labelIndex[normalize(label)]
	return st, ok
}
