package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"checkmaster/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExecutionMode режим заполнения
type ExecutionMode string

const (
	ModeNew        ExecutionMode = "new"
	ModeHistorical ExecutionMode = "historical"
)

// VehicleInfo данные ТС, клиента и компании в блоке идентификации
type VehicleInfo struct {
	VehicleType models.VehicleCategory `json:"vehicle_type"`
	Brand       string                 `json:"brand"`
	Model       string                 `json:"model"`
	Plate       string                 `json:"plate"`
	IMEI        string                 `json:"imei"`
	ClientName  string                 `json:"client_name"`
	CompanyName string                 `json:"company_name"`
}

// VehiclePatch изменения блока идентификации; nil означает "не менять"
type VehiclePatch struct {
	VehicleType   *models.VehicleCategory `json:"vehicle_type"`
	Brand         *string                 `json:"brand"`
	Model         *string                 `json:"model"`
	Plate         *string                 `json:"plate"`
	IMEI          *string                 `json:"imei"`
	ClientName    *string                 `json:"client_name"`
	CompanyName   *string                 `json:"company_name"`
	PaymentMethod *models.PaymentMethod   `json:"payment_method"`
}

// ExecutionState снимок заполнения для отображения
type ExecutionState struct {
	ID                 string               `json:"id"`
	Mode               ExecutionMode        `json:"mode"`
	TemplateID         string               `json:"template_id"`
	TemplateName       string               `json:"template_name"`
	InspectionID       string               `json:"inspection_id,omitempty"`
	IncludeVehicleInfo bool                 `json:"include_vehicle_info"`
	Vehicle            VehicleInfo          `json:"vehicle"`
	PaymentMethod      models.PaymentMethod `json:"payment_method"`
	Fields             []models.Field       `json:"fields"`
	Total              decimal.Decimal      `json:"total"`
	Processing         bool                 `json:"processing"`
	Notice             string               `json:"notice,omitempty"`
	Active             bool                 `json:"active"`
	BrandOptions       []string             `json:"brand_options"`
	ModelOptions       []string             `json:"model_options"`
}

// Execution заполнение шаблона для одного ТС
type Execution struct {
	mu sync.Mutex

	id         string
	mode       ExecutionMode
	session    models.Session
	template   *models.Template
	original   *models.Inspection
	vehicle    VehicleInfo
	payment    models.PaymentMethod
	fields     []models.Field
	total      decimal.Decimal
	processing int
	notice     string
	active     bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	extractor VehicleExtractor
	logger    *zap.Logger
	now       func() time.Time
}

func newExecution(session models.Session, extractor VehicleExtractor, logger *zap.Logger) *Execution {
	ctx, cancel := context.WithCancel(context.Background())
	return &Execution{
		id:        models.NewID(),
		session:   session,
		payment:   models.PaymentPix,
		total:     decimal.Zero,
		active:    true,
		ctx:       ctx,
		cancel:    cancel,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// ID идентификатор заполнения
func (e *Execution) ID() string {
	return e.id
}

func (e *Execution) includeVehicleInfo() bool {
	// Без исходного шаблона блок идентификации считается включенным
	return e.template == nil || e.template.IncludeVehicleInfo
}

func (e *Execution) recalculate() {
	e.total = models.ComputeTotal(e.fields)
}

func (e *Execution) field(id string) (*models.Field, error) {
	for i := range e.fields {
		if e.fields[i].ID == id {
			return &e.fields[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrFieldNotFound, id)
}

// State возвращает снимок заполнения
func (e *Execution) State() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Execution) stateLocked() ExecutionState {
	st := ExecutionState{
		ID:                 e.id,
		Mode:               e.mode,
		IncludeVehicleInfo: e.includeVehicleInfo(),
		Vehicle:            e.vehicle,
		PaymentMethod:      e.payment,
		Fields:             make([]models.Field, len(e.fields)),
		Total:              e.total,
		Processing:         e.processing > 0,
		Notice:             e.notice,
		Active:             e.active,
		BrandOptions:       []string{},
		ModelOptions:       []string{},
	}
	for i, f := range e.fields {
		st.Fields[i] = f.Clone()
	}
	if e.template != nil {
		st.TemplateID = e.template.ID
		st.TemplateName = e.template.Name
	}
	if e.original != nil {
		st.InspectionID = e.original.ID
		st.TemplateID = e.original.TemplateID
		st.TemplateName = e.original.TemplateName
	}
	if e.session.Catalog != nil {
		for _, b := range e.session.Catalog.Brands(e.vehicle.VehicleType) {
			st.BrandOptions = append(st.BrandOptions, b.Brand)
		}
		st.ModelOptions = append(st.ModelOptions, e.session.Catalog.ModelsOf(e.vehicle.VehicleType, e.vehicle.Brand)...)
	}
	return st
}

// Total текущая сумма
func (e *Execution) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// SetFieldValue устанавливает ответ поля и пересчитывает сумму
func (e *Execution) SetFieldValue(fieldID string, v models.FieldValue) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return models.ErrExecutionClosed
	}
	f, err := e.field(fieldID)
	if err != nil {
		return err
	}
	if err := f.SetValue(v); err != nil {
		return err
	}
	e.recalculate()
	return nil
}

// SetFieldRaw разбирает JSON значение по типу поля и устанавливает его
func (e *Execution) SetFieldRaw(fieldID string, raw json.RawMessage) error {
	e.mu.Lock()
	kind := models.FieldKind("")
	if f, err := e.field(fieldID); err == nil {
		kind = f.Kind
	}
	e.mu.Unlock()

	if kind == "" {
		return fmt.Errorf("%w: %s", models.ErrFieldNotFound, fieldID)
	}
	v, err := models.DecodeValue(kind, raw)
	if err != nil {
		return err
	}
	return e.SetFieldValue(fieldID, v)
}

// UpdateVehicle меняет блок идентификации. Смена категории сбрасывает марку
// и модель, номер приводится к верхнему регистру.
func (e *Execution) UpdateVehicle(patch VehiclePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return models.ErrExecutionClosed
	}

	if patch.PaymentMethod != nil && !patch.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidPaymentMethod, *patch.PaymentMethod)
	}
	if patch.VehicleType != nil && !patch.VehicleType.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidVehicleType, *patch.VehicleType)
	}

	if patch.VehicleType != nil && *patch.VehicleType != e.vehicle.VehicleType {
		e.vehicle.VehicleType = *patch.VehicleType
		e.vehicle.Brand = ""
		e.vehicle.Model = ""
	}
	if patch.Brand != nil {
		e.vehicle.Brand = *patch.Brand
	}
	if patch.Model != nil {
		e.vehicle.Model = *patch.Model
	}
	if patch.Plate != nil {
		e.vehicle.Plate = strings.ToUpper(*patch.Plate)
	}
	if patch.IMEI != nil {
		e.vehicle.IMEI = *patch.IMEI
	}
	if patch.ClientName != nil {
		e.vehicle.ClientName = *patch.ClientName
	}
	if patch.CompanyName != nil {
		e.vehicle.CompanyName = *patch.CompanyName
	}
	if patch.PaymentMethod != nil {
		e.payment = *patch.PaymentMethod
	}
	return nil
}

// Scan запускает распознавание фото ТС. Форма остается доступной для
// изменений; по завершении перезаписываются только полученные номер,
// марка и модель.
func (e *Execution) Scan(image []byte) error {
	return e.startScan(image, func(data ExtractedData) {
		if data.Plate != "" {
			e.vehicle.Plate = strings.ToUpper(data.Plate)
		}
		if data.Brand != "" {
			e.vehicle.Brand = data.Brand
		}
		if data.Model != "" {
			e.vehicle.Model = data.Model
		}
	})
}

// ScanField запускает распознавание для поля AI_PLATE, AI_VEHICLE или AI_IMEI
func (e *Execution) ScanField(fieldID string, image []byte) error {
	e.mu.Lock()
	f, err := e.field(fieldID)
	var kind models.FieldKind
	if err == nil {
		kind = f.Kind
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if !kind.IsScan() {
		return fmt.Errorf("%w: %s", models.ErrScanNotSupported, kind)
	}

	return e.startScan(image, func(data ExtractedData) {
		var text string
		switch kind {
		case models.FieldPlateScan:
			text = strings.ToUpper(data.Plate)
		case models.FieldVehicleScan:
			text = strings.TrimSpace(data.Brand + " " + data.Model)
		case models.FieldImeiScan:
			text = data.IMEI
		}
		if text == "" {
			return
		}
		if f, err := e.field(fieldID); err == nil {
			f.Value = models.TextValue(text)
			e.recalculate()
		}
	})
}

func (e *Execution) startScan(image []byte, apply func(ExtractedData)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return models.ErrExecutionClosed
	}
	e.processing++
	e.wg.Add(1)

	ctx := e.ctx
	go func() {
		defer e.wg.Done()
		data := e.extractor.ExtractVehicleInfo(ctx, image)

		e.mu.Lock()
		defer e.mu.Unlock()
		e.processing--
		if !e.active {
			return
		}
		e.notice = data.Reasoning
		apply(data)
		e.logger.Debug("Распознавание завершено",
			zap.String("execution_id", e.id),
			zap.Bool("failed", data.Failed()))
	}()
	return nil
}

// Wait ожидает завершения всех запущенных распознаваний
func (e *Execution) Wait() {
	e.wg.Wait()
}

// validateLocked возвращает первую блокирующую ошибку формы
func (e *Execution) validateLocked() *models.ValidationError {
	if e.includeVehicleInfo() && strings.TrimSpace(e.vehicle.Plate) == "" {
		return models.NewPlateRequiredError()
	}
	for i := range e.fields {
		f := &e.fields[i]
		if f.Required && !f.Satisfied() {
			return models.NewRequiredFieldError(*f)
		}
	}
	return nil
}

// Validate проверяет форму без сохранения
func (e *Execution) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if verr := e.validateLocked(); verr != nil {
		return verr
	}
	return nil
}

func (e *Execution) buildLocked() models.Inspection {
	ins := models.Inspection{
		ID:            models.NewID(),
		Date:          e.now(),
		CompanyID:     e.session.Company.ID,
		ClientName:    strings.TrimSpace(e.vehicle.ClientName),
		VehicleType:   e.vehicle.VehicleType,
		Brand:         e.vehicle.Brand,
		Model:         e.vehicle.Model,
		Plate:         e.vehicle.Plate,
		IMEI:          e.vehicle.IMEI,
		Fields:        make([]models.Field, len(e.fields)),
		PaymentMethod: e.payment,
		Status:        models.InspectionCompleted,
	}
	if e.template != nil {
		ins.TemplateID = e.template.ID
		ins.TemplateName = e.template.Name
	}
	if e.original != nil {
		ins.ID = e.original.ID
		ins.Date = e.original.Date
		ins.TemplateID = e.original.TemplateID
		ins.TemplateName = e.original.TemplateName
		ins.ClientID = e.original.ClientID
		ins.ProfessionalID = e.original.ProfessionalID
	}

	ins.CompanyName = strings.ToUpper(strings.TrimSpace(e.vehicle.CompanyName))
	if ins.CompanyName == "" {
		ins.CompanyName = e.session.Company.Name
	}
	if ins.ClientName == "" {
		ins.ClientName = models.DefaultClientName
	}
	if !ins.PaymentMethod.Valid() {
		ins.PaymentMethod = models.PaymentPix
	}

	for i, f := range e.fields {
		ins.Fields[i] = f.Clone()
	}
	ins.TotalValue = models.ComputeTotal(ins.Fields)
	return ins
}

// Finish проверяет форму и сохраняет инспекцию. При ошибке проверки или
// сохранения заполнение продолжается.
func (e *Execution) Finish(ctx context.Context, inspections *InspectionService) (*models.Inspection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil, models.ErrExecutionClosed
	}
	if verr := e.validateLocked(); verr != nil {
		return nil, verr
	}

	saved, err := inspections.Save(ctx, e.buildLocked())
	if err != nil {
		return nil, err
	}

	e.active = false
	e.cancel()
	return saved, nil
}

// Close завершает заполнение без сохранения. Результаты распознавания,
// пришедшие после закрытия, отбрасываются.
func (e *Execution) Close() {
	e.mu.Lock()
	e.active = false
	e.mu.Unlock()
	e.cancel()
	e.wg.Wait()
}

// ExecutorService управляет активными заполнениями
type ExecutorService struct {
	templates   *TemplateService
	inspections *InspectionService
	companies   *CompanyService
	extractor   VehicleExtractor
	catalog     *models.Catalog
	executions  *draftRegistry[*Execution]
	logger      *zap.Logger
}

// NewExecutorService создает сервис заполнения
func NewExecutorService(templates *TemplateService, inspections *InspectionService, companies *CompanyService, extractor VehicleExtractor, catalog *models.Catalog, logger *zap.Logger) *ExecutorService {
	if extractor == nil {
		extractor = UnavailableExtractor{}
	}
	if catalog == nil {
		catalog = models.DefaultCatalog()
	}
	return &ExecutorService{
		templates:   templates,
		inspections: inspections,
		companies:   companies,
		extractor:   extractor,
		catalog:     catalog,
		executions:  newDraftRegistry[*Execution](),
		logger:      loggerOrNop(logger),
	}
}

// Start создает заполнение нового шаблона
func (s *ExecutorService) Start(ctx context.Context, templateID string) (*Execution, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	session, err := s.companies.Session(ctx, s.catalog)
	if err != nil {
		return nil, err
	}

	tmpl := t.Clone()
	e := newExecution(session, s.extractor, s.logger)
	e.mode = ModeNew
	e.template = &tmpl
	e.fields = tmpl.Instantiate()
	e.vehicle = VehicleInfo{
		VehicleType: models.VehicleCar,
		CompanyName: session.Company.Name,
	}
	e.recalculate()

	s.executions.put(e.id, e)
	s.logger.Info("Начато заполнение шаблона", zap.String("execution_id", e.id), zap.String("template_id", tmpl.ID))
	return e, nil
}

// Open открывает сохраненную инспекцию для просмотра и изменения
func (s *ExecutorService) Open(ctx context.Context, inspectionID string) (*Execution, error) {
	ins, err := s.inspections.Get(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	session, err := s.companies.Session(ctx, s.catalog)
	if err != nil {
		return nil, err
	}

	original := ins.Clone()
	e := newExecution(session, s.extractor, s.logger)
	e.mode = ModeHistorical
	e.original = &original

	// Шаблон может быть уже удален, инспекция от него не зависит
	if t, err := s.templates.Get(ctx, original.TemplateID); err == nil {
		tmpl := t.Clone()
		e.template = &tmpl
	}

	e.fields = original.Clone().Fields
	for i := range e.fields {
		if e.fields[i].Value == nil {
			e.fields[i].Value = models.EmptyValue(e.fields[i].Kind)
		}
	}
	e.vehicle = VehicleInfo{
		VehicleType: original.VehicleType,
		Brand:       original.Brand,
		Model:       original.Model,
		Plate:       original.Plate,
		IMEI:        original.IMEI,
		ClientName:  original.ClientName,
		CompanyName: original.CompanyName,
	}
	if original.PaymentMethod.Valid() {
		e.payment = original.PaymentMethod
	}
	e.recalculate()

	s.executions.put(e.id, e)
	s.logger.Info("Открыта инспекция", zap.String("execution_id", e.id), zap.String("inspection_id", original.ID))
	return e, nil
}

// Get возвращает активное заполнение
func (s *ExecutorService) Get(id string) (*Execution, error) {
	entry, ok := s.executions.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrDraftNotFound, id)
	}
	return entry.value, nil
}

// Finish сохраняет инспекцию и закрывает заполнение
func (s *ExecutorService) Finish(ctx context.Context, id string) (*models.Inspection, error) {
	e, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	ins, err := e.Finish(ctx, s.inspections)
	if err != nil {
		return nil, err
	}
	s.executions.remove(id)
	return ins, nil
}

// Discard закрывает заполнение без сохранения
func (s *ExecutorService) Discard(id string) error {
	e, ok := s.executions.remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrDraftNotFound, id)
	}
	e.Close()
	return nil
}

// Expire закрывает заполнения, не изменявшиеся дольше ttl
func (s *ExecutorService) Expire(ttl time.Duration) int {
	stale := s.executions.expired(ttl, time.Now())
	for _, e := range stale {
		e.Close()
	}
	return len(stale)
}

// Shutdown закрывает все активные заполнения
func (s *ExecutorService) Shutdown() {
	for _, e := range s.executions.expired(-1, time.Now()) {
		e.Close()
	}
}
