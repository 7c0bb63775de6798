//go:build windows

package session

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// comProcessor drives the qbXML request processor COM object (QBXMLRP2).
type comProcessor struct {
	unknown *ole.IUnknown
	disp    *ole.IDispatch
}

// NewCOMProcessor initializes COM and instantiates the QuickBooks request
// processor. The caller must eventually call CloseConnection, which also
// releases the COM object and uninitializes COM for this thread.
func NewCOMProcessor() (RequestProcessor, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return nil, fmt.Errorf("initialize COM: %w", err)
	}

	unknown, err := oleutil.CreateObject("QBXMLRP2.RequestProcessor")
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("create request processor: %w", err)
	}

	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		ole.CoUninitialize()
		return nil, fmt.Errorf("query IDispatch: %w", err)
	}

	return &comProcessor{unknown: unknown, disp: disp}, nil
}

func (p *comProcessor) OpenConnection(appID, appName string) error {
	// 1 = localQBD: talk to the local QuickBooks Desktop instance.
	_, err := oleutil.CallMethod(p.disp, "OpenConnection2", appID, appName, 1)
	return wrapStatus("OpenConnection", err)
}

func (p *comProcessor) BeginSession(companyFile string, mode FileMode) (string, error) {
	v, err := oleutil.CallMethod(p.disp, "BeginSession", companyFile, int(mode))
	if err != nil {
		return "", wrapStatus("BeginSession", err)
	}
	return v.ToString(), nil
}

func (p *comProcessor) ProcessRequest(ticket, request string) (string, error) {
	v, err := oleutil.CallMethod(p.disp, "ProcessRequest", ticket, request)
	if err != nil {
		return "", wrapStatus("ProcessRequest", err)
	}
	return v.ToString(), nil
}

func (p *comProcessor) EndSession(ticket string) error {
	_, err := oleutil.CallMethod(p.disp, "EndSession", ticket)
	return wrapStatus("EndSession", err)
}

func (p *comProcessor) CloseConnection() error {
	_, err := oleutil.CallMethod(p.disp, "CloseConnection")

	p.disp.Release()
	p.unknown.Release()
	ole.CoUninitialize()

	return wrapStatus("CloseConnection", err)
}

// wrapStatus converts an OLE error into a StatusError carrying the raw
// HRESULT, preferring the exception SCODE when the dispatch call raised one.
func wrapStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	oleErr, ok := err.(*ole.OleError)
	if !ok {
		return &StatusError{Op: op, Message: err.Error()}
	}

	code := uint32(oleErr.Code())
	msg := oleErr.Description()
	if sub := oleErr.SubError(); sub != nil {
		if excep, ok := sub.(ole.EXCEPINFO); ok {
			code = uint32(excep.SCODE())
			msg = excep.Description()
		}
	}
	return &StatusError{Op: op, Code: code, Message: msg}
}
