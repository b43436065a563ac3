package seeder

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "NoShow"

	OfficeHours = "Mon-Fri 08:00-17:00"
)

// Generated appointments only use the terminal statuses.
var terminalStatuses = []string{StatusCompleted, StatusCancelled, StatusNoShow}

var (
	specialties = []string{
		"Cardiology", "Dermatology", "Endocrinology", "Family Medicine",
		"Gastroenterology", "General Surgery", "Geriatrics", "Hematology",
		"Infectious Disease", "Internal Medicine", "Nephrology", "Neurology",
		"Obstetrics and Gynecology", "Oncology", "Ophthalmology", "Orthopedics",
		"Otolaryngology", "Pediatrics", "Psychiatry", "Pulmonology",
		"Radiology", "Rheumatology", "Urology",
	}

	diagnoses = []string{
		"Type 2 diabetes mellitus without complications",
		"Essential (primary) hypertension",
		"Unspecified asthma, uncomplicated",
		"Hyperlipidemia, unspecified",
		"Acute upper respiratory infection",
		"Low back pain",
		"Major depressive disorder, single episode",
		"Gastro-esophageal reflux disease",
		"Urinary tract infection",
		"Acute bronchitis",
		"Hypothyroidism",
		"Migraine without aura",
		"Irritable bowel syndrome",
		"Insomnia",
		"Allergic rhinitis",
		"Osteoarthritis of knee",
		"Vitamin D deficiency",
		"Iron deficiency anemia",
		"Chronic kidney disease, stage 3",
		"Atrial fibrillation",
	}

	procedureCodes = []string{
		"99203", "99213", "99214", "99395", "71046", "80053", "85025",
		"93000", "36415", "81001", "87880", "90837", "45378", "29881",
		"20610", "11102", "97110", "77067", "90471", "96372",
	}

	drugNames = []string{
		"Metformin", "Lisinopril", "Atorvastatin", "Omeprazole", "Amoxicillin",
		"Levothyroxine", "Amlodipine", "Hydrochlorothiazide", "Sertraline",
		"Albuterol", "Losartan", "Gabapentin", "Acetaminophen", "Montelukast",
		"Furosemide", "Prednisone", "Ibuprofen", "Simvastatin", "Escitalopram",
		"Pantoprazole",
	}
)

// DataGenerator produces plausible field values. A generator is not safe
// for concurrent use; Fork gives each worker its own.
type DataGenerator struct {
	faker *gofakeit.Faker
	rand  *rand.Rand
	now   func() time.Time

	mu    sync.Mutex
	seeds *rand.Rand
}

// NewDataGenerator returns a generator seeded with seed, or with a random
// seed when seed is 0.
func NewDataGenerator(seed uint64) *DataGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return newDataGenerator(seed, time.Now)
}

func newDataGenerator(seed uint64, now func() time.Time) *DataGenerator {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &DataGenerator{
		faker: gofakeit.NewFaker(src, false),
		rand:  rand.New(rand.NewPCG(seed+1, seed^0x6a09e667f3bcc909)),
		now:   now,
		seeds: rand.New(rand.NewPCG(seed+2, seed^0xbb67ae8584caa73b)),
	}
}

// Fork derives an independent generator. It is safe to call from several
// goroutines; the children share no random state with the parent.
func (g *DataGenerator) Fork() *DataGenerator {
	g.mu.Lock()
	seed := g.seeds.Uint64()
	g.mu.Unlock()
	return newDataGenerator(seed, g.now)
}

// Intn returns a value in [0, n).
func (g *DataGenerator) Intn(n int) int {
	return g.rand.IntN(n)
}

func (g *DataGenerator) FullName() string {
	return g.faker.Name()
}

func (g *DataGenerator) DoctorName() string {
	return "Dr. " + g.faker.Name()
}

// BirthDate returns a date between maxAge and minAge years before now.
func (g *DataGenerator) BirthDate(minAge, maxAge int) time.Time {
	now := g.now()
	return g.faker.DateRange(now.AddDate(-maxAge, 0, 0), now.AddDate(-minAge, 0, 0))
}

func (g *DataGenerator) Phone() string {
	return g.faker.PhoneFormatted()
}

func (g *DataGenerator) Specialty() string {
	return g.pick(specialties, "Internal Medicine")
}

func (g *DataGenerator) Diagnosis() string {
	return g.pick(diagnoses, "Unspecified condition")
}

func (g *DataGenerator) ProcedureCode() string {
	return g.pick(procedureCodes, "99213")
}

func (g *DataGenerator) DrugName() string {
	return g.pick(drugNames, "Acetaminophen")
}

// FutureTimestamp returns a minute-aligned time after now and no later than
// days from now.
func (g *DataGenerator) FutureTimestamp(days int) time.Time {
	now := g.now()
	t := g.faker.DateRange(now.Add(time.Minute), now.AddDate(0, 0, days))
	return t.Truncate(time.Minute)
}

func (g *DataGenerator) AppointmentStatus() string {
	return g.pick(terminalStatuses, StatusCompleted)
}

func (g *DataGenerator) pick(pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	return pool[g.rand.IntN(len(pool))]
}
