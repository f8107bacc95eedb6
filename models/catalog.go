package models

// VehicleCategory категория транспортного средства, определяет справочники марок и услуг
type VehicleCategory string

const (
	VehicleCar          VehicleCategory = "Carro"
	VehicleMotorcycle   VehicleCategory = "Moto"
	VehicleTruck        VehicleCategory = "Caminhão"
	VehicleHeavyMachine VehicleCategory = "Máquina"
	VehicleBoat         VehicleCategory = "Barco"
	VehicleAirplane     VehicleCategory = "Avião"
	VehicleOther        VehicleCategory = "Outros"
)

// AllVehicleCategories возвращает категории в порядке отображения
func AllVehicleCategories() []VehicleCategory {
	return []VehicleCategory{
		VehicleCar, VehicleMotorcycle, VehicleTruck, VehicleHeavyMachine,
		VehicleBoat, VehicleAirplane, VehicleOther,
	}
}

// Valid проверяет, что категория входит в справочник
func (vc VehicleCategory) Valid() bool {
	for _, c := range AllVehicleCategories() {
		if c == vc {
			return true
		}
	}
	return false
}

// BrandModels марка и ее модели
type BrandModels struct {
	Brand  string   `json:"brand"`
	Models []string `json:"models"`
}

// carModelsLimit ограничение справочника CARROS
const carModelsLimit = 20

// Catalog статические справочники марок/моделей и услуг по категориям
type Catalog struct {
	Vehicles map[VehicleCategory][]BrandModels `json:"vehicles"`
	Services map[VehicleCategory][]string      `json:"services"`
}

// Brands возвращает марки для категории
func (c *Catalog) Brands(category VehicleCategory) []BrandModels {
	return c.Vehicles[category]
}

// ModelsOf возвращает модели марки в категории
func (c *Catalog) ModelsOf(category VehicleCategory, brand string) []string {
	for _, b := range c.Vehicles[category] {
		if b.Brand == brand {
			return b.Models
		}
	}
	return nil
}

// Items возвращает элементы справочника для источника автозаполнения.
// Порядок детерминирован, дубликаты удаляются.
func (c *Catalog) Items(source AutoFillSource) []string {
	switch source {
	case AutoFillVehicleTypes:
		items := make([]string, 0, len(AllVehicleCategories()))
		for _, vc := range AllVehicleCategories() {
			items = append(items, string(vc))
		}
		return items
	case AutoFillBrands:
		var brands []string
		for _, vc := range AllVehicleCategories() {
			for _, b := range c.Vehicles[vc] {
				brands = append(brands, b.Brand)
			}
		}
		return unique(brands)
	case AutoFillServices:
		var services []string
		for _, vc := range AllVehicleCategories() {
			services = append(services, c.Services[vc]...)
		}
		return unique(services)
	case AutoFillCarModels:
		var cars []string
		for _, b := range c.Vehicles[VehicleCar] {
			cars = append(cars, b.Models...)
		}
		if len(cars) > carModelsLimit {
			cars = cars[:carModelsLimit]
		}
		return cars
	default:
		return []string{}
	}
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// DefaultCatalog возвращает встроенный справочник
func DefaultCatalog() *Catalog {
	return &Catalog{
		Vehicles: map[VehicleCategory][]BrandModels{
			VehicleCar: {
				{Brand: "Hyundai", Models: []string{"HB20", "HB20S", "Creta", "Tucson", "I30", "Ix35", "Santa Fe", "Azera"}},
				{Brand: "Toyota", Models: []string{"Corolla", "Corolla Cross", "Hilux", "SW4", "Yaris Hatch", "Yaris Sedan", "Etios", "Rav4", "Camry"}},
				{Brand: "Volkswagen", Models: []string{"Gol", "Polo", "Virtus", "T-Cross", "Nivus", "Taos", "Amarok", "Jetta", "Tiguan", "Saveiro", "Up!"}},
				{Brand: "Ford", Models: []string{"Ka", "Ka Sedan", "Ranger", "EcoSport", "Fiesta", "Focus", "Fusion", "Territory", "Maverick", "Mustang"}},
				{Brand: "Fiat", Models: []string{"Uno", "Palio", "Mobi", "Argo", "Cronos", "Toro", "Pulse", "Fastback", "Strada", "Siena", "Fiorino", "Ducato"}},
				{Brand: "Chevrolet", Models: []string{"Onix", "Onix Plus", "Prisma", "Tracker", "S10", "Cruze", "Spin", "Montana", "Equinox", "Trailblazer", "Camaro"}},
				{Brand: "Honda", Models: []string{"Civic", "City Hatch", "City Sedan", "HR-V", "WR-V", "CR-V", "Fit", "Accord"}},
				{Brand: "Jeep", Models: []string{"Renegade", "Compass", "Commander", "Grand Cherokee", "Wrangler", "Gladiator"}},
				{Brand: "Renault", Models: []string{"Kwid", "Sandero", "Logan", "Duster", "Oroch", "Captur", "Master", "Stepway"}},
				{Brand: "Nissan", Models: []string{"Kicks", "Versa", "Sentra", "Frontier", "March", "Leaf"}},
				{Brand: "Mitsubishi", Models: []string{"L200 Triton", "Pajero Sport", "Pajero Full", "ASX", "Eclipse Cross", "Outlander"}},
				{Brand: "BMW", Models: []string{"320i", "X1", "X3", "X5", "X6", "M3", "M5", "Série 1"}},
				{Brand: "Mercedes-Benz", Models: []string{"Classe C", "Classe A", "GLA", "GLC", "GLE", "CLA", "Sprinter"}},
				{Brand: "Audi", Models: []string{"A3 Sedan", "Q3", "Q5", "A4", "Q7", "E-Tron", "TT"}},
				{Brand: "Kia", Models: []string{"Sportage", "Sorento", "Cerato", "Stonic", "Niro", "Carnival", "Bongo"}},
				{Brand: "Peugeot", Models: []string{"208", "2008", "3008", "5008", "Partner", "Expert"}},
				{Brand: "Citroën", Models: []string{"C3", "C3 Aircross", "C4 Cactus", "Jumpy", "Jumper"}},
				{Brand: "Caoa Chery", Models: []string{"Tiggo 5x", "Tiggo 7", "Tiggo 8", "Arrizo 6", "Icar"}},
				{Brand: "Volvo", Models: []string{"XC40", "XC60", "XC90", "C40"}},
				{Brand: "Land Rover", Models: []string{"Range Rover Evoque", "Discovery Sport", "Defender", "Range Rover Velar"}},
			},
			VehicleMotorcycle: {
				{Brand: "Honda", Models: []string{"CG 160 Fan", "CG 160 Titan", "Biz 125", "Biz 110i", "NXR 160 Bros", "CB 250F Twister", "CB 300F Twister", "XRE 300", "CB 500X", "NC 750X", "PCX", "Elite 125", "Africa Twin"}},
				{Brand: "Yamaha", Models: []string{"Fazer FZ25", "Factor 150", "Lander 250", "MT-03", "MT-07", "MT-09", "NMAX 160", "Crosser 150", "R3", "Ténéré 700", "Fluo"}},
				{Brand: "BMW", Models: []string{"G 310 R", "G 310 GS", "F 850 GS", "R 1250 GS", "S 1000 RR", "S 1000 XR"}},
				{Brand: "Kawasaki", Models: []string{"Ninja 400", "Ninja 650", "Z400", "Z650", "Versys 650", "Z900", "Vulcan S"}},
				{Brand: "Suzuki", Models: []string{"V-Strom 650", "V-Strom 1050", "GSX-S750", "Hayabusa", "Burgman"}},
				{Brand: "Triumph", Models: []string{"Tiger 900", "Tiger 1200", "Tiger Sport 660", "Street Triple 765", "Trident 660", "Bonneville T120"}},
				{Brand: "Harley-Davidson", Models: []string{"Iron 883", "Fat Boy", "Low Rider S", "Heritage Classic", "Pan America 1250"}},
				{Brand: "Ducati", Models: []string{"Monster", "Multistrada V4", "Scrambler", "Panigale V4 S", "Diavel 1260"}},
				{Brand: "Royal Enfield", Models: []string{"Himalayan", "Interceptor 650", "Meteor 350", "Classic 350", "Continental GT 650"}},
			},
			VehicleTruck: {
				{Brand: "Volvo", Models: []string{"FH 540", "FH 460", "VM 270", "VM 330", "FM 380", "FMX"}},
				{Brand: "Mercedes-Benz", Models: []string{"Actros 2651", "Axor 2544", "Atego 2426", "Accelo 1016", "Atron"}},
				{Brand: "Scania", Models: []string{"R 450", "R 500", "R 540", "P 310", "G 420", "S 500"}},
				{Brand: "Volkswagen", Models: []string{"Constellation 24.280", "Constellation 17.190", "Delivery 9.170", "Delivery 11.180", "Meteor 28.460"}},
				{Brand: "Iveco", Models: []string{"Daily 35S14", "Tector 240E28", "Hi-Way 440", "Stralis"}},
				{Brand: "DAF", Models: []string{"XF 105", "XF 530", "CF 85"}},
				{Brand: "MAN", Models: []string{"TGX 28.440", "TGX 29.480"}},
			},
			VehicleHeavyMachine: {
				{Brand: "Caterpillar", Models: []string{"320 Next Gen", "924K", "D6", "416F2", "120K", "336"}},
				{Brand: "JCB", Models: []string{"3CX", "JS220", "540-170", "422ZX"}},
				{Brand: "John Deere", Models: []string{"6100J", "7J Series", "8R Series", "S430", "310L", "350G"}},
				{Brand: "Case IH", Models: []string{"Magnum", "Steiger", "Puma", "Farmall", "721E", "580N"}},
				{Brand: "New Holland", Models: []string{"T6.180", "T7.245", "T8.385", "W130", "B95B"}},
				{Brand: "Komatsu", Models: []string{"PC200", "PC210", "D61EX", "WA320"}},
				{Brand: "Massey Ferguson", Models: []string{"MF 4707", "MF 6713", "MF 7722", "MF 8737"}},
			},
			VehicleBoat: {
				{Brand: "FS Yachts", Models: []string{"FS 265", "FS 290", "FS 215"}},
				{Brand: "Schaefer Yachts", Models: []string{"Schaefer 303", "Schaefer 375", "Phantom 303"}},
				{Brand: "Focker", Models: []string{"Focker 242", "Focker 215", "Focker 272"}},
				{Brand: "Generic", Models: []string{"Lancha", "Iate", "Veleiro", "Jet Ski"}},
			},
			VehicleAirplane: {
				{Brand: "Embraer", Models: []string{"Phenom 100", "Phenom 300", "Legacy 600", "E175", "E195"}},
				{Brand: "Cessna", Models: []string{"172 Skyhawk", "182 Skylane", "Citation M2"}},
				{Brand: "Beechcraft", Models: []string{"King Air C90", "Baron G58", "Bonanza G36"}},
				{Brand: "Cirrus", Models: []string{"SR20", "SR22", "Vision Jet"}},
			},
			VehicleOther: {
				{Brand: "Reboque", Models: []string{"Prancha", "Baú", "Sider", "Grade Baixa"}},
				{Brand: "Implemento", Models: []string{"Munck", "Caçamba", "Betoneira"}},
				{Brand: "N/A", Models: []string{"N/A"}},
			},
		},
		Services: map[VehicleCategory][]string{
			VehicleCar:          {"Instalação", "Retirada", "Manutenção", "Troca", "Acessórios", "Revisão"},
			VehicleMotorcycle:   {"Instalação", "Manutenção", "Revisão", "Troca"},
			VehicleTruck:        {"Tacógrafo", "Rastreador", "Sensor de Fadiga", "Câmera de Fadiga", "Telemetria"},
			VehicleHeavyMachine: {"Telemetria", "Manutenção Corretiva", "Horímetro"},
			VehicleBoat:         {"Manutenção Preventiva", "GPS", "Sonar"},
			VehicleAirplane:     {"Inspeção de Voo", "Rádio", "Transponder"},
			VehicleOther:        {"Diversos", "Serviço Geral"},
		},
	}
}
