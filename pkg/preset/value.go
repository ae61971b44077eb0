package preset

// FieldValue distinguishes a resolved value (possibly "") from no value at all.
type FieldValue struct {
	value   string
	present bool
}

func Present(v string) FieldValue { return FieldValue{value: v, present: true} }

func Absent() FieldValue { return FieldValue{} }

func (v FieldValue) Get() (string, bool) { return v.value, v.present }

func (v FieldValue) IsPresent() bool { return v.present }

// OrElse returns the resolved value or fallback when absent.
func (v FieldValue) OrElse(fallback string) string {
	if v.present {
		return v.value
	}
	return fallback
}
