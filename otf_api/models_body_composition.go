package otf_api

// BodyComposition is one InBody scan result. The scanner reports total body
// weight in kilograms; it is converted to pounds at parse time so every
// consumer sees the same unit as the rest of the record.
type BodyComposition struct {
	MemberUUID     string
	ScanResultUUID string
	Email          string
	Height         string
	Gender         string
	Age            int
	ScanDatetime   *LocalTime

	// Weight in pounds, provided by the member at scan time.
	ProvidedWeight float64

	// Total body weight in pounds, measured by the scan.
	TotalBodyWeight float64

	DryLeanMass        float64
	BodyFatMass        float64
	LeanBodyMass       float64
	SkeletalMuscleMass float64
	BodyMassIndex      float64
	PercentBodyFat     float64
	BasalMetabolicRate float64
	InBodyType         string
}

func (b *BodyComposition) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&b.MemberUUID, "memberUUId"); err != nil {
		return err
	}
	if err := obj.require(&b.ScanResultUUID, "scanResultUUId"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Email, "email"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Height, "height"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Gender, "gender"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Age, "age"); err != nil {
		return err
	}
	if _, err := obj.get(&b.ScanDatetime, "testDatetime"); err != nil {
		return err
	}
	if _, err := obj.get(&b.ProvidedWeight, "weight"); err != nil {
		return err
	}

	var tbwKg float64
	if err := obj.require(&tbwKg, "tbw"); err != nil {
		return err
	}
	b.TotalBodyWeight = kgToPounds(tbwKg)

	if _, err := obj.get(&b.DryLeanMass, "dlm"); err != nil {
		return err
	}
	if _, err := obj.get(&b.BodyFatMass, "bfm"); err != nil {
		return err
	}
	if _, err := obj.get(&b.LeanBodyMass, "lbm"); err != nil {
		return err
	}
	if _, err := obj.get(&b.SkeletalMuscleMass, "smm"); err != nil {
		return err
	}
	if _, err := obj.get(&b.BodyMassIndex, "bmi"); err != nil {
		return err
	}
	if _, err := obj.get(&b.PercentBodyFat, "pbf"); err != nil {
		return err
	}
	if _, err := obj.get(&b.BasalMetabolicRate, "bmr"); err != nil {
		return err
	}
	if _, err := obj.get(&b.InBodyType, "inBodyType"); err != nil {
		return err
	}
	return nil
}
