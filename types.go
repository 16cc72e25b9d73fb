package sdutils

type (
	// Version is the API version reported by the hot swap module.
	Version uint32
	// AttachStatus is passed to an AttachHandler on insertion or ejection.
	AttachStatus int32

	// AttachHandler is called whenever a sd card is inserted or ejected.
	AttachHandler func(status AttachStatus)
	// CleanUpHandler is called on ejection, before any AttachHandler, to close open file handles.
	CleanUpHandler func()

	GetVersionFunc                  func(out *Version) Status
	AddAttachHandlerFunc            func(fn AttachHandler) bool
	RemoveAttachHandlerFunc         func(fn AttachHandler) bool
	AddCleanUpHandlesHandlerFunc    func(fn CleanUpHandler) bool
	RemoveCleanUpHandlesHandlerFunc func(fn CleanUpHandler) bool
)

const (
	Unmounted AttachStatus = 0
	Mounted   AttachStatus = 1
)

// VersionError marks a version that was never retrieved.
const VersionError Version = 0xFFFFFFFF

// VersionCallbacks is the first module version that supports handler registration.
const VersionCallbacks Version = 1

func (a AttachStatus) String() string {
	switch a {
	case Mounted:
		return "mounted"
	case Unmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}
