package seeder

const (
	Patients       = "Patients"
	Doctors        = "Doctors"
	Appointments   = "Appointments"
	MedicalHistory = "MedicalHistory"
)

// HealthcareTables is the catalogue seeded by medload. Columns are listed in
// the order the row functions return values.
func HealthcareTables() []TableSpec {
	return []TableSpec{
		{
			Name:       Patients,
			Key:        "patients",
			PrimaryKey: "id",
			Columns:    []string{"name", "birthday", "contact"},
			Row:        patientRow,
		},
		{
			Name:       Doctors,
			Key:        "doctors",
			PrimaryKey: "id",
			Columns:    []string{"name", "specialty", "office_hours"},
			Row:        doctorRow,
		},
		{
			Name:       Appointments,
			Key:        "appointments",
			PrimaryKey: "id",
			Columns:    []string{"appointment_datetime", "patient_id", "doctor_id", "status"},
			DependsOn:  []string{Patients, Doctors},
			Row:        appointmentRow,
		},
		{
			Name:       MedicalHistory,
			Key:        "medical_history",
			PrimaryKey: "id",
			Columns:    []string{"patient_id", "diagnosis", "treatment", "prescriptions"},
			DependsOn:  []string{Patients},
			Row:        medicalHistoryRow,
		},
	}
}

func patientRow(gen *DataGenerator, _ References, _ int) []interface{} {
	return []interface{}{gen.FullName(), gen.BirthDate(18, 90), gen.Phone()}
}

func doctorRow(gen *DataGenerator, _ References, _ int) []interface{} {
	return []interface{}{gen.DoctorName(), gen.Specialty(), OfficeHours}
}

func appointmentRow(gen *DataGenerator, refs References, _ int) []interface{} {
	return []interface{}{
		gen.FutureTimestamp(365),
		refs.Pick(gen, Patients),
		refs.Pick(gen, Doctors),
		gen.AppointmentStatus(),
	}
}

func medicalHistoryRow(gen *DataGenerator, refs References, _ int) []interface{} {
	return []interface{}{
		refs.Pick(gen, Patients),
		gen.Diagnosis(),
		gen.ProcedureCode(),
		gen.DrugName(),
	}
}
