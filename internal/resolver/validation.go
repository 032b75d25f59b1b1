package resolver

import (
	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// validateInjectedField checks the modifiers of an injected field and its class
func (r *Resolver) validateInjectedField(decl *models.Declaration, field models.Field) errors.Diagnostics {
	var diags errors.Diagnostics
	anchor := anchorOf(decl, field.Name, "field")
	loc := locationOf(decl, field.Line)

	if field.Visibility == models.VisibilityPrivate {
		diags.Add(errors.Errorf(errors.PrivateFieldErrorCode, anchor,
			"@Inject annotated fields must be non private : %s#%s", decl.Name, field.Name).WithLocation(loc))
		return diags
	}
	if decl.Visibility == models.VisibilityPrivate {
		diags.Add(errors.Errorf(errors.PrivateClassErrorCode, anchor,
			"@Injected fields in class %s. The class must be non private.", decl.SimpleName()).WithLocation(loc))
	}
	return diags
}

// validateInjectedMethod checks the modifiers of an injected method and its class.
// Public and protected methods produce a diagnostic whose severity follows the method
// visibility policy, unless the method suppresses "visible" warnings.
func (r *Resolver) validateInjectedMethod(decl *models.Declaration, method models.Method) errors.Diagnostics {
	var diags errors.Diagnostics
	anchor := anchorOf(decl, method.Name, "method")
	loc := locationOf(decl, method.Line)

	if method.Visibility == models.VisibilityPrivate {
		diags.Add(errors.Errorf(errors.PrivateMethodErrorCode, anchor,
			"@Inject annotated methods must not be private : %s#%s", decl.Name, method.Name).WithLocation(loc))
		return diags
	}
	if decl.Visibility == models.VisibilityPrivate {
		diags.Add(errors.Errorf(errors.PrivateClassErrorCode, anchor,
			"@Injected fields in class %s. The class must be non private.", decl.SimpleName()).WithLocation(loc))
		return diags
	}

	visible := method.Visibility == models.VisibilityPublic || method.Visibility == models.VisibilityProtected
	if visible && !annotations.IsSuppressed(method.Annotations, annotations.SuppressVisible) {
		diags.Add(errors.NewDiagnostic(r.opts.MethodVisibilityPolicy.Severity(), errors.NonPackageVisibleMethodErrorCode, anchor,
			"@Inject annotated methods should have package visibility: %s#%s", decl.Name, method.Name).WithLocation(loc))
	}
	return diags
}

// validateInjectedConstructor checks an injected constructor: it must not be private, no
// class of the enclosing chain may be private, and the class must not capture an outer
// instance. Only the first failing check is reported.
func (r *Resolver) validateInjectedConstructor(decl *models.Declaration, ctor models.Constructor) *errors.Diagnostic {
	anchor := anchorOf(decl, constructorName, "constructor")
	loc := locationOf(decl, ctor.Line)

	if ctor.Visibility == models.VisibilityPrivate {
		return errors.Errorf(errors.PrivateConstructorErrorCode, anchor,
			"@Inject constructors must not be private in class %s.", decl.Name).WithLocation(loc)
	}
	if private := r.privateInChain(decl); private != nil {
		return errors.Errorf(errors.PrivateClassErrorCode, anchor,
			"Class %s is private. @Inject constructors are not allowed in private classes.", private.Name).WithLocation(loc)
	}
	if decl.Inner && decl.IsNested() {
		return errors.Errorf(errors.NonStaticInnerClassErrorCode, anchor,
			"Class %s is a non static inner class. @Inject constructors are not allowed in non static inner classes.", decl.Name).WithLocation(loc)
	}
	return nil
}

// privateInChain returns the innermost private declaration among decl and its enclosing chain
func (r *Resolver) privateInChain(decl *models.Declaration) *models.Declaration {
	if decl.Visibility == models.VisibilityPrivate {
		return decl
	}
	for _, enclosing := range r.table.EnclosingChain(decl) {
		if enclosing.Visibility == models.VisibilityPrivate {
			return enclosing
		}
	}
	return nil
}

// canHaveFactory reports whether the class itself is neither abstract nor private
func canHaveFactory(decl *models.Declaration) bool {
	return !decl.Abstract && decl.Visibility != models.VisibilityPrivate
}
