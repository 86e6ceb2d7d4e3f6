package copybook

// Unmarshal decodes one fixed-width record into the tagged struct pointed to
// by output.
func Unmarshal(data []byte, output interface{}) error {
	s, err := SchemaOf(output)
	if err != nil {
		return err
	}
	r, err := s.Decode(string(data))
	if err != nil {
		return err
	}
	return r.Unmarshal(output)
}

// Marshal encodes the given tagged struct to one fixed-width record.
func Marshal(input interface{}) ([]byte, error) {
	s, err := SchemaOf(input)
	if err != nil {
		return nil, err
	}
	r, err := s.FromStruct(input)
	if err != nil {
		return nil, err
	}
	text, err := r.Encode()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
