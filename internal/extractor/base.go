package extractor

// Listener receives structural events in document order while a parse tree
// is walked. Implementations must finish handling one event before the next
// is delivered; Walk never calls a Listener concurrently.
type Listener interface {
	// OnRecordClassTag starts one parent class instantiation of a record.
	OnRecordClassTag(kind string)
	// OnRecordNameLiteral fires for every named record, whatever its class.
	OnRecordNameLiteral(name string)
	// OnSwitchNameLiteral carries a non-empty string given as the first
	// class argument.
	OnSwitchNameLiteral(text string)
	// OnEmptySwitchNameMarker replaces OnSwitchNameLiteral when that string is "".
	OnEmptySwitchNameMarker()
	// OnReferenceIdentifier reports an identifier used as a class argument.
	OnReferenceIdentifier(name string)
	// OnRecordNameScopeEnd closes the scope opened by OnRecordNameLiteral.
	OnRecordNameScopeEnd()
	// OnRecordEnd closes the class instantiation opened by OnRecordClassTag.
	OnRecordEnd()
}
